package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/raykavin/chartdraw/pkg/chart"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/feed"
	"github.com/raykavin/chartdraw/pkg/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const candlesPair = "chart"

// openStorage returns nil when no storage is configured
func (a *app) openStorage() (storage.Storage, error) {
	switch a.cfg.Storage {
	case storageMemory:
		s, err := storage.FromMemory(a.log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case storageBunt:
		s, err := storage.FromFile(a.cfg.StoragePath, a.log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case storageSQLite:
		s, err := storage.FromSQLite(a.cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

func (a *app) readDocument() (annotation.Document, error) {
	if a.cfg.Drawings == "" {
		return annotation.Document{}, nil
	}

	file, err := os.Open(a.cfg.Drawings)
	if err != nil {
		return annotation.Document{}, err
	}
	defer file.Close()

	doc, err := annotation.DecodeDocument(file, documentFormat(a.cfg.Drawings))
	if err != nil {
		return doc, fmt.Errorf("failed to read drawings %s: %w", a.cfg.Drawings, err)
	}
	return doc, nil
}

func (a *app) readCandles() ([]core.Candle, error) {
	if a.cfg.Candles == "" {
		return nil, nil
	}

	csvFeed, err := feed.NewCSVFeed(a.cfg.Resample, feed.Source{
		Pair:       candlesPair,
		File:       a.cfg.Candles,
		Timeframe:  a.cfg.Timeframe,
		HeikinAshi: a.cfg.HeikinAshi,
	})
	if err != nil {
		return nil, err
	}
	return csvFeed.Candles(candlesPair, a.cfg.Resample), nil
}

// buildChart loads candles, then drawings from storage and from the
// drawings document. Document records replace stored ones with the same id.
func (a *app) buildChart(store storage.Storage) (*chart.Chart, error) {
	options := []chart.Option{
		chart.WithSize(a.cfg.Width, a.cfg.Height),
		chart.WithPixelRatio(a.cfg.PixelRatio, a.cfg.PixelRatio),
		chart.WithBarSpacing(a.cfg.BarSpacing),
		chart.WithPrecision(a.cfg.Precision),
		chart.WithPort(a.cfg.Port),
	}
	if store != nil {
		options = append(options, chart.WithStorage(store))
	}

	c, err := chart.NewChart(a.log, options...)
	if err != nil {
		return nil, err
	}

	candles, err := a.readCandles()
	if err != nil {
		return nil, err
	}
	c.SetCandles(candles)

	if store != nil {
		records, err := store.Records()
		if err != nil {
			return nil, err
		}
		if err := c.Load(records); err != nil {
			return nil, err
		}
	}

	doc, err := a.readDocument()
	if err != nil {
		return nil, err
	}
	if err := c.Load(doc.Drawings); err != nil {
		return nil, err
	}

	a.log.WithField("candles", len(candles)).
		WithField("drawings", len(c.Drawings())).
		Debug("chart loaded")
	return c, nil
}

func buildRenderCmd(a *app) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart with its drawings to PNG or SVG",
		RunE: func(*cobra.Command, []string) error {
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			}
			f := chart.Format(format)
			if f != chart.FormatPNG && f != chart.FormatSVG {
				return fmt.Errorf("unknown format: %q", format)
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			c, err := a.buildChart(store)
			if err != nil {
				return err
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()

			if err := c.Render(file, f); err != nil {
				return err
			}

			width, height := c.BitmapSize()
			a.log.Infof("Rendered %dx%d %s to %s", width, height, f, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (e.g. ./chart.png)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: png or svg (default from the output extension)")
	cmd.MarkFlagRequired("output")

	return cmd
}

func buildHitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hit X Y",
		Short: "Report the drawing under a media pixel position",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			c, err := a.buildChart(store)
			if err != nil {
				return err
			}

			hit, ok := c.HitTest(x, y)
			if !ok {
				fmt.Fprintf(a.out, "no drawing at %g,%g\n", x, y)
				return nil
			}

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"ID", "Handle", "Cursor", "Layer"})
			handle := "-"
			if hit.IsHandle() {
				handle = strconv.Itoa(hit.Handle)
			}
			table.Append([]string{hit.ExternalID, handle, string(hit.Cursor), string(hit.ZOrder)})
			table.Render()
			return nil
		},
	}
}

func buildServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive chart",
		RunE: func(*cobra.Command, []string) error {
			if a.cfg.Storage == storageNone {
				a.cfg.Storage = storageMemory
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			c, err := a.buildChart(store)
			if err != nil {
				return err
			}
			return c.Start()
		},
	}
}

func buildListCmd(a *app) *cobra.Command {
	var (
		types []string
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored drawings, or the drawings document without storage",
		RunE: func(*cobra.Command, []string) error {
			var filters []storage.Filter
			if len(types) > 0 {
				kinds := make([]annotation.Type, 0, len(types))
				for _, t := range types {
					kinds = append(kinds, annotation.Type(t))
				}
				filters = append(filters, storage.WithType(kinds...))
			}
			if since > 0 {
				filters = append(filters, storage.UpdatedSince(time.Now().Add(-since)))
			}

			records, err := a.listRecords(filters)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"ID", "Type", "Updated", "Data"})
			table.SetFooter([]string{"", "", "Total", strconv.Itoa(len(records))})
			table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)
			for _, rec := range records {
				updated := "-"
				if !rec.UpdatedAt.IsZero() {
					updated = rec.UpdatedAt.Format(time.DateTime)
				}
				table.Append([]string{rec.ID, string(rec.Type), updated, summarize(rec.Data)})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Only list these drawing types")
	cmd.Flags().DurationVar(&since, "since", 0, "Only list drawings updated within this duration")
	return cmd
}

func (a *app) listRecords(filters []storage.Filter) ([]annotation.Record, error) {
	store, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()
		return store.Records(filters...)
	}

	doc, err := a.readDocument()
	if err != nil {
		return nil, err
	}

	records := make([]annotation.Record, 0, len(doc.Drawings))
	for _, rec := range doc.Drawings {
		keep := true
		for _, filter := range filters {
			keep = keep && filter(rec)
		}
		if keep {
			records = append(records, rec)
		}
	}
	return records, nil
}

// summarize renders record data as sorted key=value pairs
func summarize(data map[string]any) string {
	parts := make([]string, 0, len(data))
	for k, v := range data {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}

func buildImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Validate the drawings document and save it to the storage",
		RunE: func(*cobra.Command, []string) error {
			if a.cfg.Storage == storageNone {
				return errors.New("import needs a storage, see --storage")
			}

			doc, err := a.readDocument()
			if err != nil {
				return err
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			bar := progressbar.NewOptions(len(doc.Drawings),
				progressbar.OptionSetWriter(a.errOut),
				progressbar.OptionSetDescription("importing drawings"),
			)

			var failed int
			for _, rec := range doc.Drawings {
				d, err := annotation.Build(rec)
				if err != nil {
					failed++
					a.log.WithError(err).WithField("id", rec.ID).Warn("skipping drawing")
					bar.Add(1)
					continue
				}

				saved, err := annotation.ToRecord(d)
				if err != nil {
					return err
				}
				if err := store.Save(&saved); err != nil {
					return err
				}
				bar.Add(1)
			}
			bar.Finish()

			a.log.Infof("Imported %d of %d drawings", len(doc.Drawings)-failed, len(doc.Drawings))
			return nil
		},
	}
}
