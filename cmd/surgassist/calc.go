package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/config"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/admission"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/burns"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/diabeticfoot"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/reporting"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/schema"
)

// calculator validates a JSON body against a schema definition, scores it
// and renders the result either as a report or as JSON.
type calculator struct {
	definition string
	run        func(body []byte, now time.Time, r *reporting.Reporter) (result any, report string, err error)
}

var calculators = map[string]calculator{
	"who": {
		definition: "WHODischarge",
		run: func(body []byte, _ time.Time, r *reporting.Reporter) (any, string, error) {
			var in admission.WHODischargeAssessment
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, "", err
			}
			s, err := admission.ScoreWHODischarge(in)
			if err != nil {
				return nil, "", err
			}
			return s, r.WHOScoreReport(s), nil
		},
	},
	"foot": {
		definition: "DiabeticFootInput",
		run: func(body []byte, now time.Time, r *reporting.Reporter) (any, string, error) {
			var in diabeticfoot.AssessmentInput
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, "", err
			}
			ev, err := diabeticfoot.Evaluate(in)
			if err != nil {
				return nil, "", err
			}
			stored := &diabeticfoot.StoredAssessment{Input: in, Evaluation: ev, AssessedAt: now}
			return ev, r.DiabeticFootReport(nil, stored), nil
		},
	},
	"burn": {
		definition: "BurnAssessment",
		run: func(body []byte, now time.Time, r *reporting.Reporter) (any, string, error) {
			var in burns.AssessmentInput
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, "", err
			}
			ev, err := burns.Evaluate(in, now)
			if err != nil {
				return nil, "", err
			}
			stored := &burns.StoredAssessment{Input: in, Evaluation: ev, AssessedAt: now}
			return ev, r.BurnReport(nil, stored), nil
		},
	},
}

func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Score an assessment from a JSON file or stdin without a database",
	}
	for _, kind := range []string{"who", "foot", "burn"} {
		kind := kind
		sub := &cobra.Command{
			Use:   kind + " [file]",
			Short: "Score a " + calculators[kind].definition + " document (\"-\" or no file reads stdin)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				asJSON, _ := cmd.Flags().GetBool("json")
				var in io.Reader = cmd.InOrStdin()
				if len(args) == 1 && args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					in = f
				}
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				reporter := reporting.NewReporter(cfg.HospitalName, cfg.UnitName)
				return runCalc(kind, in, cmd.OutOrStdout(), asJSON, reporter, time.Now())
			},
		}
		sub.Flags().Bool("json", false, "Print the result as JSON instead of a report")
		cmd.AddCommand(sub)
	}
	return cmd
}

func runCalc(kind string, in io.Reader, out io.Writer, asJSON bool, reporter *reporting.Reporter, now time.Time) error {
	calc, ok := calculators[kind]
	if !ok {
		return fmt.Errorf("unknown calculator %q", kind)
	}
	body, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	schemas, err := schema.New()
	if err != nil {
		return err
	}
	if err := schemas.Validate(calc.definition, body); err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				fmt.Fprintln(out, "  -", p)
			}
		}
		return err
	}

	result, report, err := calc.run(body, now, reporter)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = io.WriteString(out, report)
	return err
}
