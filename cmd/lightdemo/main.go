package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/lightdemo"
)

func main() {
	scenePath := flag.String("scene", "scenes/demo.yaml", "scene file to load")
	frames := flag.Uint64("frames", 600, "frames to simulate, 0 runs until interrupted")
	watch := flag.Bool("watch", false, "reload the scene file when it changes")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := lightdemo.LoadSceneConfig(*scenePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var clock lightdemo.Clock
	if cfg.FixedStep > 0 {
		clock = lightdemo.FixedClock{Step: cfg.FixedStep}
	}

	builder := lightdemo.NewAppBuilder().
		UseModule(
			lightdemo.LoggingModule{Prefix: "lightdemo", Debug: *debug},
			lightdemo.TimeModule{Clock: clock},
			lightdemo.RandomModule{Seed: cfg.Seed},
			lightdemo.GizmoModule{Enabled: cfg.Gizmos},
			lightdemo.HierarchyModule{},
			lightdemo.LightRigModule{},
			lightdemo.LightWanderModule{},
			lightdemo.SceneModule{Config: cfg},
			lightdemo.ReportModule{Every: 60},
		)
	if *watch {
		builder.UseModule(lightdemo.ConfigReloadModule{Path: *scenePath})
	}
	app := builder.Build()

	app.Run(*frames)

	cmd := app.Commands()
	if w := lightdemo.GetResource[lightdemo.SceneWatcher](cmd); w != nil {
		_ = w.Close()
	}
	lightdemo.LogLightReport(cmd)
	if l := lightdemo.GetResource[lightdemo.DefaultLogger](cmd); l != nil {
		_ = l.Sync()
	}
}
