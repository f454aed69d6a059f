package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ByLCY/slip/config"
	"github.com/ByLCY/slip/dib"
	"github.com/ByLCY/slip/dsl"
	"github.com/ByLCY/slip/fonts"
	"github.com/ByLCY/slip/layout"
	"github.com/ByLCY/slip/logger"
	"github.com/ByLCY/slip/order"
	"github.com/ByLCY/slip/printer"
	"github.com/ByLCY/slip/raster"
	canvasrenderer "github.com/ByLCY/slip/renderer/canvas"
)

// input 描述一次运行的内容来源。
type input struct {
	Template string // DSL 模板；为空时使用内置版式
	Data     string // 模板绑定的 JSON 数据文件
	Order    string // 订单 JSON；为空时使用内置示例订单
	Kind     string // kitchen, customer
	Yes      bool
}

// confirmFunc 询问是否继续打印；非终端环境返回 errNotTerminal。
type confirmFunc func(prompt string) (bool, error)

var errNotTerminal = errors.New("标准输入不是终端")

// newFlags 定义命令行参数；未显式传入的覆盖项不会遮蔽配置文件与环境变量。
func newFlags(in *input) (flags *pflag.FlagSet, configPath *string) {
	flags = pflag.NewFlagSet("slip", pflag.ExitOnError)
	configPath = flags.String("config", "", "配置文件路径（yaml/toml/json）")
	flags.StringVar(&in.Template, "template", "", "小票 DSL 模板路径")
	flags.StringVar(&in.Data, "data", "", "绑定到模板的 JSON 数据文件")
	flags.StringVar(&in.Order, "order", "", "订单 JSON 文件，为空时使用内置示例订单")
	flags.StringVar(&in.Kind, "kind", "kitchen", "内置版式：kitchen 或 customer")
	flags.BoolVarP(&in.Yes, "yes", "y", false, "不经确认直接打印")
	flags.String("debug-image", "", "调试图片输出路径（.png/.bmp）")
	flags.String("preview", "", "PDF 预览输出路径")
	flags.String("plan", "", "排版指令 JSON 输出路径")
	flags.String("transport", "", "传输方式：gdi、escpos、file、none")
	flags.String("printer", "", "GDI 打印机名称")
	flags.String("device", "", "escpos 设备或 file 输出路径")
	flags.String("log-level", "", "日志级别")
	return flags, configPath
}

func main() {
	var in input
	flags, configPath := newFlags(&in)
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()
	log = log.With(zap.String("job", uuid.NewString()))

	if err := run(cfg, in, log, terminalConfirm); err != nil {
		log.Error("小票处理失败", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

// run 串联构建、排版、光栅化、调试输出与打印。
func run(cfg *config.Config, in input, log *zap.Logger, confirm confirmFunc) error {
	pair, err := fonts.Load(cfg.Fonts.Regular, cfg.Fonts.Bold)
	if err != nil {
		return err
	}
	glyphs, err := raster.NewGlyphs(pair)
	if err != nil {
		return err
	}
	defer glyphs.Close()

	geom, err := cfg.Geometry()
	if err != nil {
		return err
	}
	opts, err := cfg.LayoutOptions()
	if err != nil {
		return err
	}
	doc, err := buildDocument(cfg, in)
	if err != nil {
		return err
	}

	canvas, plan, err := raster.Render(doc, geom, glyphs, opts)
	if err != nil {
		return fmt.Errorf("排版失败: %w", err)
	}
	log.Debug("排版完成",
		zap.Int("elements", len(doc.Elements)),
		zap.Int("ops", len(plan.Ops)),
		zap.Int("endY", plan.EndY),
		zap.String("fonts", pair.Name),
	)
	if plan.EndY > geom.HeightPx {
		log.Warn("内容超出画布高度，超出部分已裁剪", zap.Int("endY", plan.EndY), zap.Int("heightPx", geom.HeightPx))
	}

	if path := cfg.Output.DebugImage; path != "" {
		if err := dib.WriteDebugImage(canvas.Image(), path); err != nil {
			log.Warn("写入调试图片失败", zap.String("path", path), zap.Error(err))
		} else {
			log.Info("已生成调试图片", zap.String("path", path))
		}
	}
	if path := cfg.Output.PlanJSON; path != "" {
		if err := writeDebug(plan, path); err != nil {
			log.Warn("写入排版指令失败", zap.String("path", path), zap.Error(err))
		}
	}
	if path := cfg.Output.PreviewPDF; path != "" {
		if err := writePreview(plan, pair, cfg.Printer.DocName, path); err != nil {
			log.Warn("写入 PDF 预览失败", zap.String("path", path), zap.Error(err))
		} else {
			log.Info("已生成 PDF 预览", zap.String("path", path))
		}
	}

	kind := strings.ToLower(cfg.Printer.Transport)
	if kind == "" || kind == "none" {
		log.Info("未配置打印机，跳过打印")
		return nil
	}
	transport, err := printer.New(printer.Options{
		Transport: kind,
		Name:      cfg.Printer.Name,
		Device:    cfg.Printer.Device,
		DocName:   cfg.Printer.DocName,
		MaxDots:   cfg.Printer.MaxDots,
		Cut:       cfg.Printer.Cut,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	if !in.Yes {
		ok, err := confirm(fmt.Sprintf("发送到打印机 %s？[y/N] ", target(cfg)))
		if errors.Is(err, errNotTerminal) {
			log.Info("非交互环境且未指定 --yes，跳过打印")
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			log.Info("已取消打印")
			return nil
		}
	}

	transfer, err := dib.NewTransfer(canvas.Image(), geom.DPI, cfg.PrintScale(geom))
	if err != nil {
		return err
	}
	if err := transport.Transfer(transfer); err != nil {
		return fmt.Errorf("打印失败: %w", err)
	}
	return nil
}

// buildDocument 选择模板或内置版式生成文档。
func buildDocument(cfg *config.Config, in input) (layout.Document, error) {
	if in.Template != "" {
		data, err := templateData(in)
		if err != nil {
			return layout.Document{}, err
		}
		file, err := os.Open(in.Template)
		if err != nil {
			return layout.Document{}, fmt.Errorf("无法打开模板 %s: %w", in.Template, err)
		}
		defer file.Close()
		ast, err := dsl.ParseFile(in.Template, file)
		if err != nil {
			return layout.Document{}, fmt.Errorf("解析模板失败: %w", err)
		}
		return layout.Build(ast, data, cfg.BuildOptions())
	}

	o, err := loadOrder(in.Order)
	if err != nil {
		return layout.Document{}, err
	}
	style := order.DefaultStyle()
	style.BodySize = cfg.Layout.DefaultSize
	style.SimulatedBold = cfg.Layout.SimulatedBold
	switch strings.ToLower(in.Kind) {
	case "", "kitchen":
		return order.KitchenTicket(o, style), nil
	case "customer":
		return order.CustomerReceipt(o, style), nil
	default:
		return layout.Document{}, fmt.Errorf("未知的版式 %q（可选 kitchen、customer）", in.Kind)
	}
}

// templateData 优先使用 --data，否则把订单暴露给模板。
func templateData(in input) (any, error) {
	if in.Data == "" {
		o, err := loadOrder(in.Order)
		if err != nil {
			return nil, err
		}
		return o.Data(), nil
	}
	raw, err := os.ReadFile(in.Data)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件 %s 失败: %w", in.Data, err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

func loadOrder(path string) (*order.Order, error) {
	if path == "" {
		return order.Sample(), nil
	}
	return order.Load(path)
}

func target(cfg *config.Config) string {
	if strings.EqualFold(cfg.Printer.Transport, "gdi") {
		return cfg.Printer.Name
	}
	return cfg.Printer.Device
}

func writeDebug(plan *layout.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(plan, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func writePreview(plan *layout.Plan, pair fonts.Pair, title, path string) error {
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: pair, Title: title})
	pdfBytes, err := r.Render(plan)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return os.WriteFile(path, pdfBytes, 0o644)
}

// terminalConfirm 在终端上读取一行回答。
func terminalConfirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errNotTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	return readAnswer(os.Stdin)
}

func readAnswer(r io.Reader) (bool, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "是":
		return true, nil
	default:
		return false, nil
	}
}
