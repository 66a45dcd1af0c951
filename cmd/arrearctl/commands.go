package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/config"
	"github.com/warp/arrear-engine/export"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
	"github.com/warp/arrear-engine/logging"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "arrearctl",
		Short:         "Salary arrear calculator for the revised pay matrix",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("reference", "", "reference data JSON (default: ARREAR_REFERENCE_FILE, else embedded)")

	root.AddCommand(createCalcCommand())
	root.AddCommand(createMatrixCommand())
	root.AddCommand(createRatesCommand())
	return root
}

// loadSettings reads the ARREAR_* configuration and the reference data it
// points at. An explicit --reference wins over the environment.
func loadSettings(cmd *cobra.Command) (*config.Config, *factory.Reference, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("reference") {
		cfg.ReferenceFile, _ = cmd.Flags().GetString("reference")
	}
	ref, err := factory.Load(cfg.ReferenceFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, ref, nil
}

// =============================================================================
// CALC
// =============================================================================

type calcOptions struct {
	gradePay          int
	basic             int
	incrementMonth    int
	upto              string
	promotion         string
	allowOnPromotion  bool
	incrementAfterPay bool
	summary           bool
	xlsxPath          string
	csvPath           string
	verbose           bool
}

func createCalcCommand() *cobra.Command {
	var opts calcOptions
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the monthly arrear from Jan-2020 through --upto",
		Long:  `arrearctl calc --basic 73700 --increment-month 1 --upto 202602 [--grade-pay 6600] [--promotion YYYYMM]`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.gradePay, "grade-pay", 6600, "grade pay at Jan-2020")
	f.IntVar(&opts.basic, "basic", 0, "basic pay at Jan-2020 (must be on the pay matrix)")
	f.IntVar(&opts.incrementMonth, "increment-month", 0, "annual increment month, 1-12")
	f.StringVar(&opts.upto, "upto", "", "last month to compute, YYYYMM")
	f.StringVar(&opts.promotion, "promotion", "", "promotion month, YYYYMM")
	f.BoolVar(&opts.allowOnPromotion, "allow-increment-on-promotion", false, "also grant the increment in the promotion month (default: ARREAR_SUPPRESS_INCREMENT_ON_PROMOTION)")
	f.BoolVar(&opts.incrementAfterPay, "increment-after-pay", false, "show the increment from the month after it falls due (default: ARREAR_INCREMENT_TIMING)")
	f.BoolVar(&opts.summary, "summary", false, "print per-year subtotals instead of every month")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "write the report workbook to this path")
	f.StringVar(&opts.csvPath, "csv", "", "write the report CSV to this path")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log promotion and increment transitions to stderr")
	_ = cmd.MarkFlagRequired("basic")
	_ = cmd.MarkFlagRequired("increment-month")
	_ = cmd.MarkFlagRequired("upto")
	return cmd
}

func runCalc(cmd *cobra.Command, opts calcOptions) error {
	cfg, ref, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// Flags override the environment only when given.
	policy := cfg.Policy()
	if cmd.Flags().Changed("allow-increment-on-promotion") {
		policy.SuppressIncrementOnPromotion = !opts.allowOnPromotion
	}
	if cmd.Flags().Changed("increment-after-pay") {
		policy.IncrementTiming = arrear.IncrementBeforePay
		if opts.incrementAfterPay {
			policy.IncrementTiming = arrear.IncrementAfterPay
		}
	}

	engineOpts := append(cfg.EngineOptions(), arrear.WithPolicy(policy))
	if opts.verbose {
		logger, err := logging.New("debug", "console")
		if err != nil {
			return err
		}
		defer logger.Sync()
		engineOpts = append(engineOpts, arrear.WithLogger(logger.Named("engine")))
	}
	engine := ref.NewEngine(engineOpts...)

	in, err := arrear.ParseInput(arrear.RawInput{
		InitialGradePay: opts.gradePay,
		InitialBasic:    opts.basic,
		IncrementMonth:  opts.incrementMonth,
		EndMonth:        opts.upto,
		PromotionMonth:  opts.promotion,
	})
	if err != nil {
		return err
	}
	res, err := engine.Compute(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.summary {
		fmt.Fprintln(out, export.RenderSummary(res))
	} else {
		fmt.Fprintln(out, export.RenderTable(res))
	}
	fmt.Fprintf(out, "Total Arrear: %s\n", export.FormatINR(res.TotalArrear))

	if opts.xlsxPath != "" {
		rep := arrear.NewReport(in, engine.Policy(), res)
		if err := writeFile(opts.xlsxPath, func(w io.Writer) error {
			return export.WriteXLSX(w, rep, ref.Matrix)
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.xlsxPath)
	}
	if opts.csvPath != "" {
		if err := writeFile(opts.csvPath, func(w io.Writer) error {
			return export.WriteCSV(w, res)
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.csvPath)
	}
	return nil
}

// =============================================================================
// MATRIX AND RATES
// =============================================================================

func createMatrixCommand() *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the pay matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ref, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if xlsxPath == "" {
				fmt.Fprintln(out, export.RenderMatrix(ref.Matrix))
				return nil
			}
			if err := writeFile(xlsxPath, func(w io.Writer) error {
				return export.WriteMatrixXLSX(w, ref.Matrix)
			}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s\n", xlsxPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the pay matrix workbook to this path")
	return cmd
}

func createRatesCommand() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Print the DA history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ref, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if at == "" {
				fmt.Fprintln(out, export.RenderRates(ref.Rates))
				return nil
			}
			m, err := generic.ParseYYYYMM(at)
			if err != nil {
				return err
			}
			entry := ref.Rates.EntryAt(m)
			fmt.Fprintf(out, "DA for %s: %s%% (effective %s)\n", m.Label(), entry.Percent(), entry.Effective.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "resolve the rate in force for this month, YYYYMM")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
