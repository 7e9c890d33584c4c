package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/favor-advisor/internal/observability"
	"github.com/jonathan/favor-advisor/internal/types"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List catalog characters",
	Long:  "Lists catalog characters in display order with their preferred gift tags.",
	Args:  cobra.NoArgs,
	RunE:  runCharacters,
}

var giftsCmd = &cobra.Command{
	Use:   "gifts",
	Short: "List catalog gifts",
	Long:  "Lists catalog gifts with rarity and tags.",
	Args:  cobra.NoArgs,
	RunE:  runGifts,
}

var (
	listLimit  int
	listJSON   bool
	listQuery  string
	listRarity string
)

func init() {
	for _, c := range []*cobra.Command{charactersCmd, giftsCmd} {
		c.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum entries to show (0 = default, negative = all)")
		c.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")
	}
	charactersCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only characters whose name contains this text")
	giftsCmd.Flags().StringVar(&listRarity, "rarity", "", "Only gifts of this rarity (N, R, SR, SSR)")

	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(giftsCmd)
}

func runCharacters(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cat, _, err := a.catalog(cmd.Context())
	if err != nil {
		return err
	}

	chars := cat.Characters()
	if listQuery != "" {
		filtered := chars[:0:0]
		for _, c := range chars {
			if strings.Contains(c.Name, listQuery) {
				filtered = append(filtered, c)
			}
		}
		chars = filtered
	}

	if listJSON {
		return printJSON(cmd, chars)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCharacters(chars, listLimit)
	return nil
}

func runGifts(cmd *cobra.Command, _ []string) error {
	var rarity types.Rarity
	if listRarity != "" {
		rarity = types.ParseRarity(listRarity)
		if rarity == types.RarityUnknown {
			return fmt.Errorf("invalid --rarity %q: must be one of N, R, SR, SSR", listRarity)
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cat, _, err := a.catalog(cmd.Context())
	if err != nil {
		return err
	}

	gifts := cat.Gifts()
	if rarity != types.RarityUnknown {
		filtered := gifts[:0:0]
		for _, g := range gifts {
			if g.Rarity == rarity {
				filtered = append(filtered, g)
			}
		}
		gifts = filtered
	}

	if listJSON {
		return printJSON(cmd, gifts)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintGifts(gifts, listLimit)
	return nil
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
