package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"provtrack/internal/crawler"
	"provtrack/internal/report"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	renderJobs      int
	renderRecursive bool
)

var renderCmd = &cobra.Command{
	Use:   "render DIR...",
	Short: "Render a provenance tracking page for each compile directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		dirs := args
		if renderRecursive {
			dirs = nil
			cr := crawler.NewCrawler(a.cfg.Files.All(), a.cfg.Output.Dir)
			for _, root := range args {
				found, err := cr.Find(root)
				if err != nil {
					return fmt.Errorf("failed to scan %s: %w", root, err)
				}
				dirs = append(dirs, found...)
			}
			fmt.Printf("📂 Found %d compile directories\n", len(dirs))
			if len(dirs) == 0 {
				return nil
			}
		}

		names, err := pageNames(dirs)
		if err != nil {
			return err
		}

		jobs := renderJobs
		if jobs <= 0 {
			jobs = runtime.NumCPU()
		}
		g, gctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(min(jobs, len(dirs)))

		for _, dir := range dirs {
			g.Go(func() error {
				c, err := a.build(gctx, dir, names[dir])
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", dir, err)
				}
				path, err := report.Write(a.cfg.Output.Dir, c)
				if err != nil {
					return err
				}
				if a.cfg.Output.BuildReport {
					reportPath := filepath.Join(a.cfg.Output.Dir, "build_report_"+c.Name()+".json")
					if err := c.Report().Save(reportPath); err != nil {
						return err
					}
				}
				for _, s := range c.Report().Signals {
					warnColor.Printf("⚠️  %s: %s\n", c.Name(), s.Message)
				}
				okColor.Printf("✅ %s -> %s\n", dir, path)
				return nil
			})
		}
		return g.Wait()
	},
}

// pageNames assigns every directory a distinct report name, so that no two
// concurrent renders write the same page. Directories sharing a base name are
// prefixed with their parent's name.
func pageNames(dirs []string) (map[string]string, error) {
	byBase := map[string][]string{}
	for _, dir := range dirs {
		base := filepath.Base(filepath.Clean(dir))
		byBase[base] = append(byBase[base], dir)
	}

	names := make(map[string]string, len(dirs))
	owner := make(map[string]string, len(dirs))
	for _, dir := range dirs {
		clean := filepath.Clean(dir)
		name := filepath.Base(clean)
		if len(byBase[name]) > 1 {
			parent := filepath.Base(filepath.Dir(clean))
			name = strings.Trim(parent, string(filepath.Separator)+".") + "_" + name
		}
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("compile directories %s and %s would both render %s", prev, dir, report.FileName(name))
		}
		owner[name] = dir
		names[dir] = name
	}
	return names, nil
}

func init() {
	renderCmd.Flags().BoolVarP(&renderRecursive, "recursive", "r", false, "Treat arguments as trace roots and render every compile directory below them")
	renderCmd.Flags().IntVarP(&renderJobs, "jobs", "j", 0, "Directories rendered concurrently (default: number of CPUs)")
}
