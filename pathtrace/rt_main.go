package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/pathtracer"
	"github.com/gekko3d/pathtracer/pathtrace/rt/app"
	"github.com/gekko3d/pathtracer/pathtrace/rt/loader"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	fs := flag.NewFlagSet("pathtrace", flag.ExitOnError)
	flags := pathtracer.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pathtrace [flags] <path-to-json>\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		return
	}

	cfg, err := pathtracer.LoadConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := pathtracer.NewDefaultLogger("pathtrace", cfg.Logging)
	defer logger.Sync()

	opts := loader.Options{BVH: cfg.BVH, Capacity: cfg.Capacity, Logger: logger}
	scene, err := loader.Load(fs.Arg(0), opts)
	if err != nil {
		logger.Errorf("loading scene: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Infof("scene %s: %d objects, %d triangles, %d bvh nodes",
		scene.ID, scene.ObjectCount, scene.TriangleCount, scene.Stats.Nodes)

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	out := scene.Output
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(out.Width*out.Scale, out.Height*out.Scale, cfg.Window.Title, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, scene, logger)
	application.VSync = cfg.Window.VSync
	if err := application.Init(); err != nil {
		logger.Errorf("init: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyF12:
			if _, err := application.Capture(); err != nil {
				logger.Errorf("capture: %v", err)
			}
		case glfw.KeyF3:
			logger.SetDebug(!logger.DebugEnabled())
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Render()
	}
}
