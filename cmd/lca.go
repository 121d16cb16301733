// Command lca runs a life cycle assessment over a scenario file and prints
// the per-indicator impact report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	qsdsan "github.com/philthestone/QSDsan"
	"github.com/philthestone/QSDsan/internal/must"
	"github.com/philthestone/QSDsan/process"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/mapstructure"
)

type scenario struct {
	LifeTime     float64          `mapstructure:"life_time"`
	LifeTimeUnit string           `mapstructure:"life_time_unit"`
	Indicators   []map[string]any `mapstructure:"indicators"`
	Items        []map[string]any `mapstructure:"items"`
	Units        []unitConfig     `mapstructure:"units"`
	Streams      []streamConfig   `mapstructure:"streams"`
	OtherItems   []otherConfig    `mapstructure:"other_items"`
}

type unitConfig struct {
	ID             string            `mapstructure:"id"`
	Construction   []activityConfig  `mapstructure:"construction"`
	Transportation []transportConfig `mapstructure:"transportation"`
}

type activityConfig struct {
	Name    string             `mapstructure:"name"`
	Impacts map[string]float64 `mapstructure:"impacts"`
}

type transportConfig struct {
	Name          string             `mapstructure:"name"`
	Impacts       map[string]float64 `mapstructure:"impacts"`
	IntervalHours float64            `mapstructure:"interval_hr"`
}

type streamConfig struct {
	ID           string  `mapstructure:"id"`
	MassFlowRate float64 `mapstructure:"mass_flow_rate"`
	ImpactItem   string  `mapstructure:"impact_item"`
}

type otherConfig struct {
	Item     string  `mapstructure:"item"`
	Quantity float64 `mapstructure:"quantity"`
	Unit     string  `mapstructure:"unit"`
}

func main() {
	flagConfig := ""
	flagNormalizeStream := ""
	flagShowUnit := ""
	flagLogLevel := ""
	flagLogFormat := ""

	flag.StringVar(&flagConfig, "config", "", "scenario file to assess (json)")
	flag.StringVar(&flagNormalizeStream, "normalize.stream", "", "also print impacts normalized by this stream's mass flow")
	flag.StringVar(&flagShowUnit, "show.unit", "yr", "unit the life time is displayed in")
	flag.StringVar(&flagLogLevel, "log.level", "info", "log severity (debug, info, warn, error)")
	flag.StringVar(&flagLogFormat, "log.format", "text", "log format (text, json)")

	flag.Parse()

	initLogging(flagLogLevel, flagLogFormat)

	if flagConfig == "" {
		slog.Error("scenario file is not set")
		flag.PrintDefaults()
		os.Exit(1)
	}

	lca, system, err := loadScenario(flagConfig)
	if err != nil {
		slog.Error("failed to load scenario", "config", flagConfig, "err", err)
		os.Exit(1)
	}

	if err := lca.Show(os.Stdout, flagShowUnit); err != nil {
		slog.Error("failed to render report", "err", err)
		os.Exit(1)
	}

	if flagNormalizeStream != "" {
		normalized, err := normalize(lca, system, flagNormalizeStream)
		if err != nil {
			slog.Error("failed to normalize impacts", "stream", flagNormalizeStream, "err", err)
			os.Exit(1)
		}
		fmt.Printf("\nImpacts normalized by stream %q (per kg):\n", flagNormalizeStream)
		must.PrintDebugJSON(normalized)
	}
}

func loadScenario(path string) (*qsdsan.LCA, *process.System, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	decoded := make(map[string]any)
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("parse scenario: %w", err)
	}

	cfg := new(scenario)
	if err := mapstructure.Decode(decoded, cfg); err != nil {
		return nil, nil, fmt.Errorf("decode scenario: %w", err)
	}

	registry := qsdsan.NewRegistry()
	if err := registry.LoadIndicators(cfg.Indicators); err != nil {
		return nil, nil, err
	}
	if err := registry.LoadItems(cfg.Items); err != nil {
		return nil, nil, err
	}

	system, err := buildSystem(path, cfg, registry)
	if err != nil {
		return nil, nil, err
	}

	opts := []qsdsan.Option{
		qsdsan.WithRegistry(registry),
		qsdsan.WithLifeTimeUnit(cfg.LifeTimeUnit),
	}
	for _, other := range cfg.OtherItems {
		opts = append(opts, qsdsan.WithOtherItemIn(other.Item, other.Quantity, other.Unit))
	}

	lca, err := qsdsan.New(system, cfg.LifeTime, opts...)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("scenario loaded",
		"units", len(cfg.Units),
		"streams", len(cfg.Streams),
		"items", len(registry.Items()),
	)

	return lca, system, nil
}

func buildSystem(id string, cfg *scenario, registry *qsdsan.Registry) (*process.System, error) {
	system := process.NewSystem(id)

	for _, unitCfg := range cfg.Units {
		unit := process.NewUnit(unitCfg.ID)
		for _, activity := range unitCfg.Construction {
			unit.AddConstruction(&qsdsan.Construction{
				Name:    activity.Name,
				Impacts: activity.Impacts,
			})
		}
		for _, activity := range unitCfg.Transportation {
			unit.AddTransportation(&qsdsan.Transportation{
				Name:     activity.Name,
				Impacts:  activity.Impacts,
				Interval: time.Duration(activity.IntervalHours * float64(time.Hour)),
			})
		}
		system.AddUnit(unit)
	}

	for _, streamCfg := range cfg.Streams {
		stream := process.NewStream(streamCfg.ID, streamCfg.MassFlowRate)
		if streamCfg.ImpactItem != "" {
			item, err := registry.Item(streamCfg.ImpactItem)
			if err != nil {
				return nil, fmt.Errorf("stream %q: %w", streamCfg.ID, err)
			}
			stream.LinkItem(item)
		}
		system.AddStream(stream)
	}

	return system, nil
}

func normalize(lca *qsdsan.LCA, system *process.System, streamID string) (qsdsan.Impacts, error) {
	for _, stream := range system.Streams() {
		if stream.ID() == streamID {
			return lca.NormalizedImpacts(stream)
		}
	}
	return nil, fmt.Errorf("stream %q not found in scenario", streamID)
}

func initLogging(logLevel string, logFormat string) {
	switch logFormat {
	case "text":
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:   slogLevel(logLevel),
			NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
		})))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(logLevel),
		})))
	}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}
