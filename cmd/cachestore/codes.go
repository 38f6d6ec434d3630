package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/cachestore/internal/errors"
)

func codesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes [code]",
		Short: "List diagnostic codes or explain one",
		Long: `List every diagnostic code the store and CLI report, or print the
full explanation and fix for a single code.

Examples:
  cachestore codes
  cachestore codes CS002`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listCodes(cmd.OutOrStdout())
			}
			return explainCode(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func listCodes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tCATEGORY\tMESSAGE")
	for _, code := range errors.Codes() {
		t, _ := errors.Lookup(code)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", code, t.Category, t.Message)
	}
	return tw.Flush()
}

func explainCode(w io.Writer, code string) error {
	code = strings.ToUpper(code)
	if _, ok := errors.Lookup(code); !ok {
		return errors.New("CS122").WithDetail(fmt.Sprintf("%q is not a registered code.", code))
	}
	_, err := fmt.Fprint(w, errors.New(code).Format())
	return err
}
