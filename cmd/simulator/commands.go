package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fystack/lottery-simulator/internal/budget"
	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/session"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func explain(err error) error {
	if errors.Is(err, session.ErrAgeNotConfirmed) {
		return fmt.Errorf("%w: run 'simulator age-gate --confirm' first", err)
	}
	return err
}

func parseNumbers(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatNumbers(numbers []int) string {
	return strings.Join(lo.Map(numbers, func(n int, _ int) string {
		return fmt.Sprintf("%02d", n)
	}), " ")
}

func printCombinations(w io.Writer, combos []lottery.Combination) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tLOTTERY\tSOURCE\tCOST\tNUMBERS")
	for _, c := range combos {
		fmt.Fprintf(tw, "%s\t%s\t%s\tR$ %s\t%s\n",
			c.CreatedAt().Local().Format(time.DateTime),
			c.LotteryType,
			c.Source.Label(),
			c.Cost.StringFixed(2),
			formatNumbers(c.Numbers),
		)
	}
	return tw.Flush()
}

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var (
		lotteryName string
		numbers     int
		fixedRaw    string
		count       int
		save        bool
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draw random combinations, optionally saving them to history",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := enum.ParseLotteryType(lotteryName)
			if err != nil {
				return err
			}
			fixed, err := parseNumbers(fixedRaw)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if numbers == 0 {
				p, err := a.session.Catalog().Get(t)
				if err != nil {
					return err
				}
				numbers = p.MinNumbers
			}
			combos := make([]lottery.Combination, 0, count)
			for range count {
				c, err := a.session.Generate(t, numbers, fixed)
				if err != nil {
					return explain(err)
				}
				combos = append(combos, c)
			}
			if save {
				if err := a.session.Save(cmd.Context(), combos...); err != nil {
					return explain(err)
				}
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), combos)
			}
			return printCombinations(cmd.OutOrStdout(), combos)
		},
	}
	cmd.Flags().StringVarP(&lotteryName, "lottery", "l", string(enum.LotteryMegaSena), "Lottery type")
	cmd.Flags().IntVarP(&numbers, "numbers", "n", 0, "Numbers per game (default: lottery minimum)")
	cmd.Flags().StringVar(&fixedRaw, "fixed", "", "Comma separated numbers every game must contain")
	cmd.Flags().IntVarP(&count, "count", "c", 1, "How many games to draw")
	cmd.Flags().BoolVar(&save, "save", false, "Save the games to history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newBudgetCmd(flags *rootFlags) *cobra.Command {
	var (
		lotteryName string
		amountRaw   string
		materialize int
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show how many games a budget buys per ticket size",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := enum.ParseLotteryType(lotteryName)
			if err != nil {
				return err
			}
			amount := budget.ParseBudget(amountRaw)

			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if materialize > 0 {
				combos, err := a.session.MaterializeBudget(cmd.Context(), t, amount, materialize)
				if err != nil {
					return explain(err)
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), combos)
				}
				return printCombinations(cmd.OutOrStdout(), combos)
			}

			rows, err := a.session.SimulateBudget(t, amount)
			if err != nil {
				return explain(err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "R$ %s does not buy any %s game\n", amount.StringFixed(2), t)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBERS\tPRICE\tGAMES\tTOTAL\tLEFTOVER")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\tR$ %s\t%d\tR$ %s\tR$ %s\n",
					r.Numbers, r.PricePerGame.StringFixed(2), r.Quantity, r.TotalCost.StringFixed(2), r.Leftover.StringFixed(2))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&lotteryName, "lottery", "l", string(enum.LotteryMegaSena), "Lottery type")
	cmd.Flags().StringVarP(&amountRaw, "amount", "a", "", "Budget in reais, e.g. 50,00")
	cmd.Flags().IntVar(&materialize, "materialize", 0, "Draw and save every game of the row with this many numbers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear saved games",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.session.History()
			if asJSON {
				if entries == nil {
					entries = []lottery.Combination{}
				}
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved games")
				return nil
			}
			return printCombinations(cmd.OutOrStdout(), entries)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			removed := len(a.session.History())
			if err := a.session.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d games\n", removed)
			return nil
		},
	}

	cmd.AddCommand(list, clearCmd)
	return cmd
}

func newDreamCmd(flags *rootFlags) *cobra.Command {
	var (
		saveFor string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "dream [text]",
		Short: "Interpret a dream and suggest numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			in, err := a.session.InterpretDream(cmd.Context(), strings.Join(args, " "))
			var raw *dream.RawResponseError
			switch {
			case errors.As(err, &raw):
				fmt.Fprintln(cmd.ErrOrStderr(), raw.Warning)
				fmt.Fprintln(cmd.OutOrStdout(), raw.Raw)
				return nil
			case errors.Is(err, dream.ErrMissingCredential):
				return errors.New(dream.MissingCredentialMessage)
			case err != nil:
				return explain(err)
			}

			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), in); err != nil {
					return err
				}
			} else {
				printInterpretation(cmd.OutOrStdout(), in, a.session.Catalog())
			}

			if saveFor != "" {
				t, err := enum.ParseLotteryType(saveFor)
				if err != nil {
					return err
				}
				c, err := a.session.SaveDreamSuggestion(cmd.Context(), t, in.Suggestions[t])
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s: %s\n", c.LotteryType, formatNumbers(c.Numbers))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&saveFor, "save", "", "Save the suggestion for this lottery type")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printInterpretation(w io.Writer, in *dream.Interpretation, catalog lottery.Catalog) {
	fmt.Fprintf(w, "%s\n\n", in.Title)
	if in.Meaning != "" {
		fmt.Fprintf(w, "%s\n\n", in.Meaning)
	}
	for _, v := range in.Variations {
		fmt.Fprintf(w, "- %s: %s\n", v.Title, v.Text)
	}
	if in.Bicho.Name != "" {
		fmt.Fprintf(w, "Bicho: %s (grupo %d) dezena %s centena %s milhar %s\n",
			in.Bicho.Name, in.Bicho.Group, in.Bicho.Dezena, in.Bicho.Centena, in.Bicho.Milhar)
	}
	for _, p := range catalog.List() {
		if numbers, ok := in.Suggestions[p.Type]; ok {
			fmt.Fprintf(w, "%-10s %s\n", p.Name, formatNumbers(numbers))
		}
	}
	if in.Warning != "" {
		fmt.Fprintf(w, "\n%s\n", in.Warning)
	}
	if in.Closing != "" {
		fmt.Fprintf(w, "\n%s\n", in.Closing)
	}
}

func newAgeGateCmd(flags *rootFlags) *cobra.Command {
	var confirm, revoke bool
	cmd := &cobra.Command{
		Use:   "age-gate",
		Short: "Show or change the 18+ confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirm && revoke {
				return errors.New("--confirm and --revoke are mutually exclusive")
			}
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if confirm || revoke {
				if err := a.session.ConfirmAge(cmd.Context(), confirm); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "age confirmed: %t\n", a.session.AgeConfirmed())
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm you are 18 or older")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Withdraw the confirmation")
	return cmd
}
