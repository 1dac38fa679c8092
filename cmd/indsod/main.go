// Command indsod enumerates the symmetry-irreducible atomic configurations
// of a substituted crystalline sublattice. Run with no subcommand, it
// matches spec.md §6's CLI surface exactly: it looks for INDSOD and SPOSCAR
// in the working directory and exits non-zero with a readable message on
// any validation or integrity failure. The grouping/describe subcommands
// expose the same pipeline at finer granularity, in the style of
// cmd/z80opt's multi-subcommand surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsci/indsod/internal/codec"
	"github.com/matsci/indsod/internal/config"
	"github.com/matsci/indsod/internal/enumerate"
	"github.com/matsci/indsod/internal/orbit"
	"github.com/matsci/indsod/internal/progress"
	"github.com/matsci/indsod/internal/result"
	"github.com/matsci/indsod/internal/structure"
	"github.com/matsci/indsod/internal/symmetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "indsod",
		Short: "Enumerate symmetry-irreducible configurations of a substituted sublattice",
	}

	var indsodPath, sposcarPath, spgmatPath string
	var shards int
	var showProgress bool

	addCommonFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&indsodPath, "indsod", "INDSOD", "path to the INDSOD configuration file")
		cmd.Flags().StringVar(&sposcarPath, "sposcar", "SPOSCAR", "path to the SPOSCAR structure file")
		cmd.Flags().StringVar(&spgmatPath, "spgmat", "SPGMAT", "path to the SPGMAT symmetry-operation file")
		cmd.Flags().IntVar(&shards, "shards", 0, "enumerator shards (0 = sequential)")
		cmd.Flags().BoolVarP(&showProgress, "progress", "p", false, "render a progress bar during enumeration")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full enumeration pipeline and write the requested outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(indsodPath, sposcarPath, spgmatPath, shards, showProgress)
		},
	}
	addCommonFlags(runCmd)
	rootCmd.RunE = runCmd.RunE
	addCommonFlags(rootCmd)

	groupingCmd := &cobra.Command{
		Use:   "grouping",
		Short: "Compute and print the orbit partition (the \"grouping\" step) without enumerating",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrouping(indsodPath, sposcarPath, spgmatPath)
		},
	}
	addCommonFlags(groupingCmd)

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the parsed configuration and structure without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(indsodPath, sposcarPath)
		},
	}
	addCommonFlags(describeCmd)

	rootCmd.AddCommand(runCmd, groupingCmd, describeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadInputs(indsodPath, sposcarPath string) (config.INDSOD, *structure.Structure, error) {
	f, err := os.Open(indsodPath)
	if err != nil {
		return config.INDSOD{}, nil, fmt.Errorf("opening %s: %w", indsodPath, err)
	}
	defer f.Close()
	cfg, err := config.ParseFile(f)
	if err != nil {
		return cfg, nil, fmt.Errorf("parsing %s: %w", indsodPath, err)
	}

	sf, err := os.Open(sposcarPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("opening %s: %w", sposcarPath, err)
	}
	defer sf.Close()
	st, err := structure.Read(sf)
	if err != nil {
		return cfg, nil, fmt.Errorf("parsing %s: %w", sposcarPath, err)
	}

	siteCount, err := st.TypeAtomCount(cfg.Site)
	if err != nil {
		return cfg, st, err
	}
	if err := cfg.Validate(siteCount); err != nil {
		return cfg, st, err
	}
	return cfg, st, nil
}

func buildOrbitTable(cfg config.INDSOD, st *structure.Structure, spgmatPath string) (*orbit.Table, *structure.Sublattice, []symmetry.Operation, error) {
	sl, err := structure.NewSublattice(st, cfg.Site)
	if err != nil {
		return nil, nil, nil, err
	}

	sf, err := os.Open(spgmatPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening %s: %w", spgmatPath, err)
	}
	defer sf.Close()
	ops, err := symmetry.ReadSPGMAT(sf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing %s: %w", spgmatPath, err)
	}

	offset, err := st.TypeOffset(cfg.Site)
	if err != nil {
		return nil, nil, nil, err
	}
	n, err := st.TypeAtomCount(cfg.Site)
	if err != nil {
		return nil, nil, nil, err
	}
	coords := st.Coords[offset : offset+n]

	tbl, err := symmetry.BuildEQAMAT(coords, ops, cfg.Prec)
	if err != nil {
		return nil, nil, nil, err
	}
	return tbl, sl, ops, nil
}

func runDescribe(indsodPath, sposcarPath string) error {
	cfg, st, err := loadInputs(indsodPath, sposcarPath)
	if err != nil {
		return err
	}
	fmt.Printf("nsub=%d site=%d prec=%g\n", cfg.NSub, cfg.Site, cfg.Prec)
	fmt.Printf("composition: %v\n", cfg.Composition())
	fmt.Printf("structure: %d species, %d total atoms\n", len(st.Symbols), len(st.Coords))
	return nil
}

func runGrouping(indsodPath, sposcarPath, spgmatPath string) error {
	cfg, st, err := loadInputs(indsodPath, sposcarPath)
	if err != nil {
		return err
	}
	tbl, sl, _, err := buildOrbitTable(cfg, st, spgmatPath)
	if err != nil {
		return err
	}
	res, err := orbit.Partition(tbl, sl)
	if err != nil {
		return err
	}
	fmt.Println(res.String())
	return nil
}

func runPipeline(indsodPath, sposcarPath, spgmatPath string, shards int, showProgress bool) error {
	cfg, st, err := loadInputs(indsodPath, sposcarPath)
	if err != nil {
		return err
	}
	tbl, sl, ops, err := buildOrbitTable(cfg, st, spgmatPath)
	if err != nil {
		return err
	}

	gres, err := orbit.Partition(tbl, sl)
	if err != nil {
		return err
	}
	partitioned := &orbit.Table{N: tbl.N, O: tbl.O, M: gres.M}

	// lpro is the config-file source of truth for whether the progress bar
	// renders; --progress/-p only ever turns it on as a CLI override, never
	// off, since spec.md §6 names lpro as an INDSOD field, not a flag.
	showProgress = showProgress || cfg.LPRO
	var bar *progress.Bar
	var reportFn func(current, total int64)
	if showProgress {
		bar = progress.New(os.Stderr)
		reportFn = func(current, total int64) {
			bar.Set(total)
			bar.Put(current + 1)
		}
	}

	k := cfg.Composition()
	var enumRes *enumerate.Result
	if shards > 0 {
		enumRes, err = enumerate.ParallelEnumerate(context.Background(), partitioned, gres.G, k, shards, reportFn)
	} else {
		enumRes, err = enumerate.Enumerate(partitioned, gres.G, k, enumerate.Options{Progress: reportFn})
	}
	if err != nil {
		return err
	}

	summary := result.Summarize(enumRes)
	fmt.Printf("orbits=%d totalCoverage=%d minDegeneracy=%d maxDegeneracy=%d partial=%v\n",
		summary.N, summary.TotalCoverage, summary.MinDegeneracy, summary.MaxDegeneracy, summary.Partial)

	if cfg.LEQA {
		f, err := os.Create("EQAMAT")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := symmetry.WriteEQAMAT(f, partitioned); err != nil {
			return err
		}
	}

	if cfg.LSPG {
		f, err := os.Create("SPGMAT")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := symmetry.WriteSPGMAT(f, ops); err != nil {
			return err
		}
	}

	var c *codec.Codec
	if cfg.LCFG || cfg.LPOS {
		c, err = codec.New(partitioned.N, k)
		if err != nil {
			return err
		}
	}

	if cfg.LCFG {
		lf, err := os.Create("CONFGL")
		if err != nil {
			return err
		}
		defer lf.Close()
		if err := result.WriteCONFGL(lf, enumRes, c.Decode); err != nil {
			return err
		}

		df, err := os.Create("CONFGD")
		if err != nil {
			return err
		}
		defer df.Close()
		if err := result.WriteCONFGD(df, enumRes); err != nil {
			return err
		}
	}

	if cfg.LPOS {
		for i, rep := range enumRes.Representatives {
			a, err := c.Decode(rep.Rank)
			if err != nil {
				return err
			}
			orbitStruct, err := buildOrbitStructure(cfg, st, a, rep.Rank)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("POSCAR.%04d", i+1)
			pf, err := os.Create(name)
			if err != nil {
				return err
			}
			err = structure.Write(pf, orbitStruct)
			pf.Close()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// buildOrbitStructure substitutes the decoded A-form a (one label in
// [0,cfg.NSub) per sublattice site, in the same site order orbit.Partition
// left the sublattice in) into st's cfg.Site species block, splitting it
// into cfg.NSub species blocks named by cfg.Symb and grouped contiguously
// as POSCAR requires, and leaves every other species block untouched.
func buildOrbitStructure(cfg config.INDSOD, st *structure.Structure, a []int, rank int64) (*structure.Structure, error) {
	offset, err := st.TypeOffset(cfg.Site)
	if err != nil {
		return nil, err
	}
	n, err := st.TypeAtomCount(cfg.Site)
	if err != nil {
		return nil, err
	}
	siteCoords := st.Coords[offset : offset+n]

	groups := make([][][3]float64, cfg.NSub)
	for i, label := range a {
		groups[label] = append(groups[label], siteCoords[i])
	}

	coords := make([][3]float64, 0, len(st.Coords))
	coords = append(coords, st.Coords[:offset]...)
	for _, g := range groups {
		coords = append(coords, g...)
	}
	coords = append(coords, st.Coords[offset+n:]...)

	symbols := make([]string, 0, len(st.Symbols)+cfg.NSub-1)
	symbols = append(symbols, st.Symbols[:cfg.Site-1]...)
	symbols = append(symbols, cfg.Symb[:cfg.NSub]...)
	symbols = append(symbols, st.Symbols[cfg.Site:]...)

	counts := make([]int, 0, len(st.Counts)+cfg.NSub-1)
	counts = append(counts, st.Counts[:cfg.Site-1]...)
	counts = append(counts, cfg.Subs[:cfg.NSub]...)
	counts = append(counts, st.Counts[cfg.Site:]...)

	return &structure.Structure{
		Comment: fmt.Sprintf("%s (orbit representative, rank %d)", st.Comment, rank),
		Scale:   st.Scale,
		Lattice: st.Lattice,
		Symbols: symbols,
		Counts:  counts,
		Coords:  coords,
	}, nil
}
