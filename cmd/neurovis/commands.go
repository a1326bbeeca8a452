package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/neurovis/internal/chart"
	"github.com/san-kum/neurovis/internal/config"
	"github.com/san-kum/neurovis/internal/export"
	"github.com/san-kum/neurovis/internal/graphdb"
	"github.com/san-kum/neurovis/internal/metrics"
	"github.com/san-kum/neurovis/internal/plasticity"
	"github.com/san-kum/neurovis/internal/server"
	"github.com/san-kum/neurovis/internal/storage"
	"github.com/san-kum/neurovis/internal/viz"
)

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "interactive terminal viewer; without --preset or --config a picker is shown",
		RunE:  runView,
	}
}

func runView(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	open := func(cfg *config.Config, title string) (viz.Model, error) {
		ds, err := openDataset(cmd.Context(), cfg)
		if err != nil {
			return viz.Model{}, err
		}
		return viz.NewViewer(ctx, ds.driver, viz.ViewerOptions{
			Title:    title,
			Width:    cfg.Render.Width,
			Height:   cfg.Render.Height,
			Interval: time.Duration(cfg.Render.IntervalMs) * time.Millisecond,
			Hulls:    cfg.Render.Hulls,
			Theme:    cfg.Render.Theme,
		})
	}

	if preset != "" || configFile != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		m, err := open(cfg, cfg.Variant)
		if err != nil {
			return err
		}
		return viz.Run(m)
	}

	choices := make([]viz.Choice, 0)
	for _, v := range config.Variants {
		for _, name := range config.ListPresets(v) {
			cfg := config.GetPreset(v, name)
			choices = append(choices, viz.Choice{
				Variant: v,
				Preset:  name,
				Info:    fmt.Sprintf("%d steps", len(cfg.Steps())),
			})
		}
	}
	picker := viz.NewPicker(choices, func(c viz.Choice) (viz.Model, error) {
		cfg := config.GetPreset(c.Variant, c.Preset)
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return viz.Model{}, err
		}
		return open(cfg, c.Variant+" / "+c.Preset)
	})
	return viz.Run(picker)
}

func renderCmd() *cobra.Command {
	var (
		output  string
		braille bool
		rotY    float64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render the last configured timestep to svg",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := ds.driver.Run(cmd.Context()); err != nil {
				return err
			}
			cam := ds.camera()
			cam.RotateY(rotY)

			var out string
			if braille {
				canvas := viz.NewCanvas(cfg.Render.Width, cfg.Render.Height)
				viz.Render3D(canvas, viz.SceneWireframe(ds.scene, cfg.Render.Hulls), cam)
				out = export.CanvasToSVG(canvas, 4, "#00ff88")
			} else {
				var sb strings.Builder
				opts := export.DefaultSVGOptions()
				opts.Hulls = cfg.Render.Hulls
				opts.Title = fmt.Sprintf("%s, step %d", cfg.Variant, ds.scene.Step)
				export.SceneToSVG(&sb, ds.scene, cam, opts)
				out = sb.String()
			}
			if err := os.WriteFile(output, []byte(out), 0644); err != nil {
				return err
			}
			logger.Info("rendered", "path", output, "step", ds.scene.Step, "synapses", len(ds.scene.Segments))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "scene.svg", "output file")
	cmd.Flags().BoolVar(&braille, "braille", false, "render the braille canvas instead of vectors")
	cmd.Flags().Float64Var(&rotY, "rotate", 0, "camera rotation around y in radians")
	return cmd
}

func animateCmd() *cobra.Command {
	var (
		output string
		delay  int
		spin   float64
	)
	cmd := &cobra.Command{
		Use:   "animate",
		Short: "record every timestep into an animated gif",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rec := export.NewGIFRecorder(cfg.Render.Width, cfg.Render.Height, ds.camera())
			rec.Hulls = cfg.Render.Hulls
			rec.Spin = spin
			if err := export.RecordGIF(cmd.Context(), ds.driver, rec); err != nil {
				return err
			}
			if err := rec.Save(output, delay); err != nil {
				return err
			}
			logger.Info("saved animation", "path", output, "frames", rec.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "animation.gif", "output file")
	cmd.Flags().IntVar(&delay, "delay", 80, "frame delay in hundredths of a second")
	cmd.Flags().Float64Var(&spin, "spin", 0.2, "camera rotation per frame in radians")
	return cmd
}

func areasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "list area aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AREA\tNEURONS\tCENTER\tVOLUME\tHULL")
			for _, a := range ds.scene.Areas {
				hull := "box"
				if a.Hull != nil {
					hull = fmt.Sprintf("%d faces", len(a.Hull.Faces))
				}
				fmt.Fprintf(w, "%s\t%d\t(%.1f, %.1f, %.1f)\t%.1f\t%s\n",
					a.Label, len(a.IDs), a.Center.X, a.Center.Y, a.Center.Z, a.Volume, hull)
			}
			return w.Flush()
		},
	}
}

func plasticityCmd() *cobra.Command {
	var (
		output   string
		terminal bool
	)
	cmd := &cobra.Command{
		Use:   "plasticity [variant...]",
		Short: "plot synapse creations, deletions and net change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			variants := cfg.Plasticity.Variants
			if len(args) > 0 {
				variants = args
			}
			series, err := plasticity.LoadVariants(cmd.Context(), variants, cfg.PlasticityPath)
			if err != nil {
				return err
			}

			if terminal {
				for _, s := range series {
					fmt.Println(chart.Terminal(s, cfg.Render.Width, 10))
					fmt.Println()
				}
				return nil
			}
			if err := chart.SaveFigure(output, series); err != nil {
				return err
			}
			logger.Info("saved figure", "path", output, "variants", len(series))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "plasticity.png", "output file (.png or .svg)")
	cmd.Flags().BoolVar(&terminal, "terminal", false, "draw charts in the terminal")
	return cmd
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "run all timesteps and export the final scene as json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rec := metrics.NewRecorder(metrics.Defaults()...)
			ds.driver.AddObserver(rec)
			if err := ds.driver.Run(cmd.Context()); err != nil {
				return err
			}
			data := export.NewSceneData(cfg.Variant, ds.scene, rec)
			if output == "" || output == "-" {
				return export.ExportJSONStdout(data)
			}
			return export.ExportJSON(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run all timesteps headless and store the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rec := metrics.NewRecorder(metrics.Defaults()...)
			ds.driver.AddObserver(rec)

			start := time.Now()
			if err := ds.driver.Run(cmd.Context()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			st := storage.New(cfg.Runs)
			if err := st.Init(); err != nil {
				return err
			}
			data := export.NewSceneData(cfg.Variant, ds.scene, nil)
			runID, err := st.Save(storage.RunMetadata{
				Variant:   cfg.Variant,
				Preset:    preset,
				Positions: cfg.PositionsPath(),
				Steps:     ds.driver.Steps(),
				Neurons:   ds.scene.Pop.Len(),
				Areas:     len(ds.scene.Areas),
				Lenient:   cfg.Render.Lenient,
				Metrics:   rec.Summary(),
			}, rec.Frames(), &data)
			if err != nil {
				return err
			}

			fmt.Printf("run: %s\n", runID)
			fmt.Printf("frames: %d\n", len(rec.Frames()))
			fmt.Printf("elapsed: %v\n", elapsed.Round(time.Millisecond))
			for name, v := range rec.Summary() {
				fmt.Printf("%s: %.2f\n", name, v)
			}
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runs, err := storage.New(cfg.Runs).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVARIANT\tTIME\tNEURONS\tAREAS\tSTEPS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
					run.ID,
					run.Variant,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Neurons,
					run.Areas,
					len(run.Steps),
				)
			}
			return w.Flush()
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st := storage.New(cfg.Runs)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			frames, err := st.LoadFrames(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("variant: %s\n", meta.Variant)
			fmt.Printf("neurons: %d in %d areas\n", meta.Neurons, meta.Areas)
			fmt.Printf("frames: %d\n\n", len(frames))
			if len(frames) < 2 {
				return nil
			}

			edges := make([]float64, len(frames))
			for i, f := range frames {
				edges[i] = float64(f.Edges)
			}
			fmt.Println(asciigraph.Plot(edges,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("synapses per frame"),
			))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var (
		addr string
		loop bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the animation to websocket clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			srv := server.New(ds.driver, cfg.Variant,
				server.WithLogger(logger.WithPrefix("server")),
				server.WithLoop(loop),
				server.WithInterval(time.Duration(cfg.Render.IntervalMs)*time.Millisecond),
			)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&loop, "loop", true, "restart the animation when it finishes")
	return cmd
}

func publishCmd() *cobra.Command {
	var frames bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "write neurons, areas and synapses to neo4j",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := openDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			exec, err := graphdb.NewExecutor(cfg.Graph.URI, cfg.Graph.User, cfg.GraphPassword(), cfg.Graph.Database)
			if err != nil {
				return err
			}
			defer exec.Close(ctx)
			if err := exec.Verify(ctx); err != nil {
				return fmt.Errorf("neo4j unreachable at %s: %w", cfg.Graph.URI, err)
			}

			pub := graphdb.NewPublisher(exec, cfg.Variant, logger.WithPrefix("graphdb"))
			if err := pub.PublishNeurons(ctx, ds.scene.Pop); err != nil {
				return err
			}
			if err := pub.PublishAreas(ctx, ds.scene.Areas); err != nil {
				return err
			}
			if !frames {
				return nil
			}

			obs := pub.Observer(ctx)
			ds.driver.AddObserver(obs)
			if err := ds.driver.Run(ctx); err != nil {
				return err
			}
			if err := obs.Err(); err != nil {
				return err
			}
			logger.Info("published frames", "count", obs.Frames())
			return nil
		},
	}
	cmd.Flags().BoolVar(&frames, "frames", true, "also publish synapses of every timestep")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [variant]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variants := config.Variants
			if len(args) == 1 {
				variants = args
			}
			for _, v := range variants {
				names := config.ListPresets(v)
				if len(names) == 0 {
					fmt.Printf("no presets for variant: %s\n", v)
					continue
				}
				fmt.Printf("presets for %s:\n", v)
				for _, name := range names {
					cfg := config.GetPreset(v, name)
					fmt.Printf("  %-10s %d steps, network %s\n", name, len(cfg.Steps()), describePattern(cfg.Network.Pattern))
				}
			}
			return nil
		},
	}
}

func describePattern(p string) string {
	if p == "" {
		return "none"
	}
	return filepath.Base(p)
}
