package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ketotrack/internal/app"
	"ketotrack/internal/domain"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record readings for a day (today by default)",
	Long: `Record a day's readings. Only the flags given are stored; logging the
same date again replaces the whole entry.`,
	Example: "  ketotrack log --glucose 4.5 --ketones 1.5 --weight 176 --unit lb",
	RunE:    withRuntime(runLog),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged days, newest first",
	RunE:  withRuntime(runList),
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's entry and ratio status",
	RunE:  withRuntime(runToday),
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all metrics to a CSV file",
	RunE:  withRuntime(runExport),
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Fill the last two weeks with sample data",
	RunE:  withRuntime(runSample),
}

func init() {
	logCmd.Flags().String("date", "", "Day to record (YYYY-MM-DD)")
	logCmd.Flags().Float64("glucose", 0, "Blood glucose (mmol/L)")
	logCmd.Flags().Float64("ketones", 0, "Blood ketones (mmol/L)")
	logCmd.Flags().Float64("weight", 0, "Body weight")
	logCmd.Flags().String("unit", "kg", "Weight unit: kg or lb")
	logCmd.Flags().Int("energy", 0, "Energy level 1-10")
	logCmd.Flags().Int("clarity", 0, "Mental clarity 1-10")

	listCmd.Flags().Int("days", 0, "Only show the last N days (0 shows all)")
	listCmd.Flags().String("unit", "kg", "Weight unit: kg or lb")

	exportCmd.Flags().String("unit", "kg", "Weight unit: kg or lb")
	exportCmd.Flags().StringP("output", "o", "", "Output path (defaults to the generated file name)")
}

func floatFlag(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func unitFlag(cmd *cobra.Command) (domain.WeightUnit, error) {
	raw, _ := cmd.Flags().GetString("unit")
	return domain.ParseWeightUnit(raw)
}

func runLog(cmd *cobra.Command, rt *runtime, _ []string) error {
	unit, err := unitFlag(cmd)
	if err != nil {
		return err
	}
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = domain.Day(time.Now())
	}
	m := domain.DailyMetric{
		Date:    date,
		Glucose: floatFlag(cmd, "glucose"),
		Ketones: floatFlag(cmd, "ketones"),
		Energy:  intFlag(cmd, "energy"),
		Clarity: intFlag(cmd, "clarity"),
	}
	if w := floatFlag(cmd, "weight"); w != nil {
		kg := domain.ToKilograms(*w, unit)
		m.Weight = &kg
	}

	list, err := rt.repo.SaveDailyMetric(cmd.Context(), m)
	if err != nil {
		return errors.New(app.UserMessage(err))
	}
	saved := list[0]
	for _, entry := range list {
		if entry.Date == date {
			saved = entry
			break
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: ratio %s (%s)\n",
		saved.Date, formatFloat(saved.DrBozRatio), domain.RatioStatus(saved.DrBozRatio))
	return nil
}

func runList(cmd *cobra.Command, rt *runtime, _ []string) error {
	unit, err := unitFlag(cmd)
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")

	var list []domain.DailyMetric
	if days > 0 {
		recent := rt.repo.RecentMetrics(cmd.Context(), days)
		for i := len(recent) - 1; i >= 0; i-- {
			list = append(list, recent[i])
		}
	} else {
		list = rt.repo.DailyMetrics(cmd.Context())
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No data logged yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\tGLUCOSE\tKETONES\tRATIO\tSTATUS\tWEIGHT (%s)\tENERGY\tCLARITY\n", unit)
	for _, m := range list {
		var weight *float64
		if m.Weight != nil {
			w := domain.FromKilograms(*m.Weight, unit)
			weight = &w
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Date,
			formatFloat(m.Glucose),
			formatFloat(m.Ketones),
			formatFloat(m.DrBozRatio),
			domain.RatioStatus(m.DrBozRatio),
			formatFloat(weight),
			formatInt(m.Energy),
			formatInt(m.Clarity),
		)
	}
	return tw.Flush()
}

func runToday(cmd *cobra.Command, rt *runtime, _ []string) error {
	out := cmd.OutOrStdout()
	m := rt.repo.TodayMetric(cmd.Context())
	if m == nil {
		fmt.Fprintln(out, "Nothing logged today.")
		return nil
	}
	fmt.Fprintf(out, "%s  glucose %s  ketones %s\n", m.Date, formatFloat(m.Glucose), formatFloat(m.Ketones))
	fmt.Fprintf(out, "Dr. Boz ratio: %s (%s)\n", formatFloat(m.DrBozRatio), domain.RatioStatus(m.DrBozRatio))
	return nil
}

func runExport(cmd *cobra.Command, rt *runtime, _ []string) error {
	unit, err := unitFlag(cmd)
	if err != nil {
		return err
	}
	exp, err := rt.repo.ExportCSV(cmd.Context(), unit)
	if err != nil {
		return errors.New(app.UserMessage(err))
	}
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = exp.Filename
	}
	if err := os.WriteFile(path, exp.Data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", exp.Records, path)
	return nil
}

func runSample(cmd *cobra.Command, rt *runtime, _ []string) error {
	n, err := rt.repo.GenerateSampleData(cmd.Context())
	if err != nil {
		return errors.New(app.UserMessage(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d days of sample data\n", n)
	return nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
