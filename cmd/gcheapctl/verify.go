package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gcheap/heap/verify"
)

var verifyEach bool

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().BoolVar(&verifyEach, "each", false, "Validate after every step instead of only at the end")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [op...]",
		Short: "Run a workload script and validate chain invariants",
		Long: `The verify command applies a workload script (see "gcheapctl dump --help")
to a fresh arena and checks the descriptor chain invariants.

Example:
  gcheapctl verify a:64 a:128 f:0 f:1
  gcheapctl verify a:16 a:16 a:16 f:1 f:2 --each`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

type verifyResult struct {
	Valid  bool   `json:"valid"`
	Steps  int    `json:"steps"`
	Step   int    `json:"failed_step,omitempty"`
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runVerify(args []string) error {
	ops, err := parseScript(args)
	if err != nil {
		return err
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res := verifyResult{Valid: true, Steps: len(ops)}
	check := func(step int) {
		if !res.Valid {
			return
		}
		if err := verify.AllInvariants(s.arena.Bytes()); err != nil {
			res.Valid = false
			res.Step = step
			res.Reason = err.Error()
			var ve *verify.ValidationError
			if errors.As(err, &ve) {
				res.Type = ve.Type
			}
		}
	}

	for i, o := range ops {
		if err := s.apply(o); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if verifyEach {
			check(i)
		}
	}
	check(len(ops))

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.Valid {
		printInfo("OK: %d step(s), %d chunk(s), %d live\n", len(ops), s.alloc.ChunkCount(), s.alloc.LiveCount())
	} else {
		printInfo("INVALID after step %d: %s\n", res.Step, res.Reason)
	}
	if !res.Valid {
		return errors.New("chain invariants violated")
	}
	return nil
}
