package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ByLCY/slip/layout"
)

// Config holds all settings of one slip run.
type Config struct {
	Paper   PaperConfig
	Layout  LayoutConfig
	Fonts   FontsConfig
	Output  OutputConfig
	Printer PrinterConfig
	Log     LogConfig
}

// PaperConfig describes the paper roll and the print head.
type PaperConfig struct {
	WidthIn          float64 // paper width in inches
	DPI              float64
	HeightPx         int // fixed canvas height; content beyond it is clipped
	ReservedMarginPx int // hardware-unprintable border
}

// LayoutConfig holds layout engine defaults.
type LayoutConfig struct {
	LeftMarginPx      int
	RightMarginPx     int
	StartYPx          int
	LineAdvance       string // size, pitch
	NominalLineHeight float64
	SimulatedBold     bool
	DefaultSize       float64
}

// FontsConfig holds font file paths; empty uses the built-in fonts.
type FontsConfig struct {
	Regular string
	Bold    string
}

// OutputConfig holds debug artifact paths; empty disables an artifact.
type OutputConfig struct {
	DebugImage string
	PreviewPDF string
	PlanJSON   string
}

// PrinterConfig selects the transport.
type PrinterConfig struct {
	Transport  string // gdi, escpos, file, none
	Name       string
	Device     string
	DocName    string
	MaxDots    int
	Cut        bool
	PrintScale float64 // 0 derives printable/canvas width
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Defaults registers built-in values. 3.125in at 203 DPI gives a 634px
// canvas, 576px of which the mechanism can print.
func Defaults(v *viper.Viper) {
	v.SetDefault("paper.width_in", 3.125)
	v.SetDefault("paper.dpi", 203)
	v.SetDefault("paper.height_px", 1000)
	v.SetDefault("paper.reserved_margin_px", 58)

	v.SetDefault("layout.left_margin_px", 10)
	v.SetDefault("layout.right_margin_px", 10)
	v.SetDefault("layout.start_y_px", 10)
	v.SetDefault("layout.line_advance", "size")
	v.SetDefault("layout.nominal_line_height", 20)
	v.SetDefault("layout.simulated_bold", true)
	v.SetDefault("layout.default_size", 12)

	v.SetDefault("fonts.regular", "")
	v.SetDefault("fonts.bold", "")

	v.SetDefault("output.debug_image", "receipt.png")
	v.SetDefault("output.preview_pdf", "")
	v.SetDefault("output.plan_json", "")

	v.SetDefault("printer.transport", "none")
	v.SetDefault("printer.name", "Receipt")
	v.SetDefault("printer.device", "")
	v.SetDefault("printer.doc_name", "receipt")
	v.SetDefault("printer.max_dots", 0)
	v.SetDefault("printer.cut", false)
	v.SetDefault("printer.print_scale", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"debug-image": "output.debug_image",
	"preview":     "output.preview_pdf",
	"plan":        "output.plan_json",
	"transport":   "printer.transport",
	"printer":     "printer.name",
	"device":      "printer.device",
	"log-level":   "log.level",
}

// Load reads configuration.
// Priority (highest to lowest):
// 1. Flags that were set explicitly
// 2. Environment variables with SLIP_ prefix (e.g., SLIP_PAPER_DPI)
// 3. The config file at path (yaml/toml/json by extension), when path is not empty
// 4. Built-in defaults
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	Defaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	v.SetEnvPrefix("SLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("绑定参数 --%s 失败: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Paper: PaperConfig{
			WidthIn:          v.GetFloat64("paper.width_in"),
			DPI:              v.GetFloat64("paper.dpi"),
			HeightPx:         v.GetInt("paper.height_px"),
			ReservedMarginPx: v.GetInt("paper.reserved_margin_px"),
		},
		Layout: LayoutConfig{
			LeftMarginPx:      v.GetInt("layout.left_margin_px"),
			RightMarginPx:     v.GetInt("layout.right_margin_px"),
			StartYPx:          v.GetInt("layout.start_y_px"),
			LineAdvance:       v.GetString("layout.line_advance"),
			NominalLineHeight: v.GetFloat64("layout.nominal_line_height"),
			SimulatedBold:     v.GetBool("layout.simulated_bold"),
			DefaultSize:       v.GetFloat64("layout.default_size"),
		},
		Fonts: FontsConfig{
			Regular: v.GetString("fonts.regular"),
			Bold:    v.GetString("fonts.bold"),
		},
		Output: OutputConfig{
			DebugImage: v.GetString("output.debug_image"),
			PreviewPDF: v.GetString("output.preview_pdf"),
			PlanJSON:   v.GetString("output.plan_json"),
		},
		Printer: PrinterConfig{
			Transport:  v.GetString("printer.transport"),
			Name:       v.GetString("printer.name"),
			Device:     v.GetString("printer.device"),
			DocName:    v.GetString("printer.doc_name"),
			MaxDots:    v.GetInt("printer.max_dots"),
			Cut:        v.GetBool("printer.cut"),
			PrintScale: v.GetFloat64("printer.print_scale"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise surface deep inside a render.
func (c *Config) Validate() error {
	var errs []error
	if c.Paper.WidthIn <= 0 {
		errs = append(errs, fmt.Errorf("paper.width_in 必须为正数"))
	}
	if c.Paper.DPI <= 0 {
		errs = append(errs, fmt.Errorf("paper.dpi 必须为正数"))
	}
	if c.Paper.HeightPx <= 0 {
		errs = append(errs, fmt.Errorf("paper.height_px 必须为正数"))
	}
	if c.Paper.ReservedMarginPx < 0 {
		errs = append(errs, fmt.Errorf("paper.reserved_margin_px 不能为负"))
	}
	if c.Layout.DefaultSize <= 0 {
		errs = append(errs, fmt.Errorf("layout.default_size 必须为正数"))
	}
	adv, err := layout.ParseAdvance(c.Layout.LineAdvance)
	if err != nil {
		errs = append(errs, fmt.Errorf("layout.line_advance: %w", err))
	} else if adv == layout.AdvanceFixedPitch && c.Layout.NominalLineHeight <= 0 {
		errs = append(errs, fmt.Errorf("layout.nominal_line_height 必须为正数"))
	}
	switch strings.ToLower(c.Printer.Transport) {
	case "", "none", "gdi", "escpos", "file":
	default:
		errs = append(errs, fmt.Errorf("printer.transport %q 未知", c.Printer.Transport))
	}
	if c.Printer.PrintScale < 0 {
		errs = append(errs, fmt.Errorf("printer.print_scale 不能为负"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	return nil
}

// Geometry derives the canvas geometry.
func (c *Config) Geometry() (layout.Geometry, error) {
	return layout.NewGeometry(c.Paper.WidthIn, c.Paper.DPI, c.Paper.HeightPx,
		c.Paper.ReservedMarginPx, c.Layout.LeftMarginPx, c.Layout.RightMarginPx)
}

// LayoutOptions converts layout settings into engine options.
func (c *Config) LayoutOptions() (layout.Options, error) {
	adv, err := layout.ParseAdvance(c.Layout.LineAdvance)
	if err != nil {
		return layout.Options{}, err
	}
	return layout.Options{
		Advance:           adv,
		NominalLineHeight: c.Layout.NominalLineHeight,
		StartY:            c.Layout.StartYPx,
	}, nil
}

// BuildOptions returns template defaults.
func (c *Config) BuildOptions() layout.BuildOptions {
	return layout.BuildOptions{
		DefaultSize:   c.Layout.DefaultSize,
		SimulatedBold: c.Layout.SimulatedBold,
	}
}

// PrintScale returns the configured destination scale or derives it from geometry.
func (c *Config) PrintScale(g layout.Geometry) float64 {
	if c.Printer.PrintScale > 0 {
		return c.Printer.PrintScale
	}
	return g.PrintScale()
}
