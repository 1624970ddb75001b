package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/zintix-labs/collectlab"
	"github.com/zintix-labs/collectlab/presets"
	"github.com/zintix-labs/collectlab/server/logger"
	"github.com/zintix-labs/collectlab/setting"
	"github.com/zintix-labs/collectlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	preset    string
	file      string
	items     int
	rate      int
	k0        int
	dup0      int
	from      int
	to        int
	step      int
	worker    int
	out       string
	showpb    bool
	logMode   string
	pprofmode string
}

func bindVar() {
	flag.StringVar(&cfg.preset, "preset", "", "embedded preset name (see -preset list)")
	flag.StringVar(&cfg.file, "cfg", "", "path of a .yaml/.yml/.json collect setting")
	flag.IntVar(&cfg.items, "d", 16, "number of unique items to collect")
	flag.IntVar(&cfg.rate, "c", 4, "duplicates per exchanged item (0 disables exchange)")
	flag.IntVar(&cfg.k0, "k0", 0, "starting unique items")
	flag.IntVar(&cfg.dup0, "dup0", 0, "starting duplicates")
	flag.IntVar(&cfg.from, "from", 0, "first draw count (0 with -to 0 = default range)")
	flag.IntVar(&cfg.to, "to", 0, "last draw count")
	flag.IntVar(&cfg.step, "step", 1, "draw count step")
	flag.IntVar(&cfg.worker, "worker", runtime.NumCPU(), "number of workers")
	flag.StringVar(&cfg.out, "out", "table", "output: table|json|yaml")
	flag.BoolVar(&cfg.showpb, "pb", false, "show progress bar")
	flag.StringVar(&cfg.logMode, "log-mode", "ModeSilence", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 這裡解析設定來源並計算曲線
func execute() error {
	cfg.valid()

	lab, err := collectlab.NewAuto(collectlab.Configs(presets.FS))
	if err != nil {
		return err
	}
	if cfg.preset == "list" {
		for _, name := range lab.Names() {
			fmt.Println(name)
		}
		return nil
	}
	cs, err := cfg.setting(lab)
	if err != nil {
		return err
	}

	lg, ah := logger.NewAsync(1024, logger.ParseMode(cfg.logMode))
	defer ah.Close()

	ev, err := collectlab.NewEvaluator(cs, lg)
	if err != nil {
		return err
	}
	if cfg.out == "table" {
		green := "\033[1;32m"
		reset := "\033[0m"
		p := message.NewPrinter(language.English)
		p.Printf("%s[%s] [WORKERS:%d] [DRAW COUNTS:%d]%s\n", green, cs.Title(), cfg.worker, len(ev.Draws()), reset)
	}
	rep, used, err := ev.Report(context.Background(), cfg.worker, cfg.showpb)
	if err != nil {
		return err
	}
	lg.Info("done", slog.String("setting", cs.Title()), slog.Duration("used", used))

	switch cfg.out {
	case "json":
		return rep.WriteWith(os.Stdout, &stats.JsonReportRender{})
	case "yaml":
		return rep.WriteWith(os.Stdout, &stats.YAMLReportRender{})
	default:
		rep.StdOut(used)
		return nil
	}
}

// setting 優先序：-preset > -cfg > 旗標
func (cfg *config) setting(lab *collectlab.Lab) (*setting.CollectSetting, error) {
	if cfg.preset != "" {
		return lab.Setting(cfg.preset)
	}
	if cfg.file != "" {
		raw, err := os.ReadFile(cfg.file)
		if err != nil {
			return nil, err
		}
		return setting.GetSettingByExt(cfg.file, raw)
	}
	cs := &setting.CollectSetting{
		Items:           cfg.items,
		ExchangeRate:    cfg.rate,
		StartUnique:     cfg.k0,
		StartDuplicates: cfg.dup0,
	}
	if cfg.from != 0 || cfg.to != 0 {
		cs.DrawRange = &setting.DrawRange{From: cfg.from, To: cfg.to, Step: cfg.step}
	}
	return cs, cs.Valid()
}

func (cfg *config) valid() {
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}
	switch cfg.out {
	case "table", "json", "yaml":
	default:
		log.Fatal("value err : out must be table|json|yaml")
	}
}
