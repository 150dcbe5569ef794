package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ketotrack/internal/app"
	"ketotrack/internal/domain"
)

const migrationWait = 2 * time.Minute

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage cloud sync",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in and sync state",
	RunE:  withRuntime(runSyncStatus),
}

var syncEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn cloud sync on and migrate local data",
	RunE:  withRuntime(runSyncSet(true)),
}

var syncDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn cloud sync off; data stays on this device",
	RunE:  withRuntime(runSyncSet(false)),
}

var syncMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy local data to the cloud now",
	RunE:  withRuntime(runSyncMigrate),
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  withRuntime(runSignUp),
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and enable cloud sync",
	RunE:  withRuntime(runSignIn),
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out; cloud sync is turned off",
	RunE:  withRuntime(runSignOut),
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncEnableCmd)
	syncCmd.AddCommand(syncDisableCmd)
	syncCmd.AddCommand(syncMigrateCmd)

	for _, c := range []*cobra.Command{signupCmd, signinCmd} {
		c.Flags().String("email", "", "Account email")
		c.Flags().String("password", "", "Account password (or set KETOTRACK_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}
}

func credentialsFrom(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("KETOTRACK_PASSWORD")
	}
	if password == "" {
		return "", "", errors.New("--password or KETOTRACK_PASSWORD is required")
	}
	return email, password, nil
}

func runSyncStatus(cmd *cobra.Command, rt *runtime, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	uid, signedIn := rt.ident.CurrentUser()
	enabled, err := rt.state.CloudSyncEnabled(ctx)
	if err != nil {
		return err
	}
	if signedIn {
		fmt.Fprintf(out, "Signed in:  %s\n", uid)
	} else {
		fmt.Fprintln(out, "Signed in:  no")
	}
	fmt.Fprintf(out, "Cloud sync: %t (active: %t)\n", enabled, rt.policy.ShouldUseCloud(ctx))
	if signedIn {
		migrated, err := rt.state.MigrationCompleted(ctx, uid)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Migrated:   %t\n", migrated)
	}
	return nil
}

func runSyncSet(enabled bool) func(*cobra.Command, *runtime, []string) error {
	return func(cmd *cobra.Command, rt *runtime, _ []string) error {
		ctx := cmd.Context()
		if _, ok := rt.ident.CurrentUser(); enabled && !ok {
			return errors.New("sign in first to enable cloud sync")
		}
		task, err := rt.policy.SetCloudSync(ctx, enabled)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cloud sync %s\n", map[bool]string{true: "enabled", false: "disabled"}[enabled])
		if task == nil {
			return nil
		}
		waitCtx, cancel := context.WithTimeout(ctx, migrationWait)
		defer cancel()
		return reportMigration(cmd, task.Wait(waitCtx))
	}
}

func runSyncMigrate(cmd *cobra.Command, rt *runtime, _ []string) error {
	if _, ok := rt.ident.CurrentUser(); !ok {
		return errors.New("sign in first to migrate data")
	}
	return reportMigration(cmd, rt.migrator.Trigger(cmd.Context()))
}

func runSignUp(cmd *cobra.Command, rt *runtime, _ []string) error {
	email, password, err := credentialsFrom(cmd)
	if err != nil {
		return err
	}
	account, err := rt.auth.SignUp(cmd.Context(), email, password)
	if err != nil {
		return errors.New(app.UserMessage(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", account.Email)
	return reportMigration(cmd, rt.waitMigration(cmd.Context(), migrationWait))
}

func runSignIn(cmd *cobra.Command, rt *runtime, _ []string) error {
	email, password, err := credentialsFrom(cmd)
	if err != nil {
		return err
	}
	account, err := rt.auth.SignIn(cmd.Context(), email, password)
	if err != nil {
		return errors.New(app.UserMessage(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", account.Email)
	return reportMigration(cmd, rt.waitMigration(cmd.Context(), migrationWait))
}

func runSignOut(cmd *cobra.Command, rt *runtime, _ []string) error {
	if _, ok := rt.ident.CurrentUser(); !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}
	rt.auth.SignOut()
	// Let the coordinator persist the sign-out before exiting.
	if err := rt.waitMigration(cmd.Context(), migrationWait); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Data stays on this device.")
	return nil
}

func reportMigration(cmd *cobra.Command, err error) error {
	out := cmd.OutOrStdout()
	var partial *domain.MigrationPartialFailure
	switch {
	case err == nil:
		fmt.Fprintln(out, "Local data is synced to the cloud.")
		return nil
	case errors.As(err, &partial):
		fmt.Fprintf(out, "%s (%d of %d days)\n", app.UserMessage(err), len(partial.Failed), partial.Total)
		return nil
	default:
		return errors.New(app.UserMessage(err))
	}
}
