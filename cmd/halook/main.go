// Command halook renders graded images, serves the editing bridge and
// inspects preset folders.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dixieflatline76/halook/config"
	"github.com/dixieflatline76/halook/pkg/api"
	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/pkg/grade"
	"github.com/dixieflatline76/halook/pkg/look"
	"github.com/dixieflatline76/halook/pkg/preset"
	"github.com/dixieflatline76/halook/pkg/render"
	"github.com/dixieflatline76/halook/util/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "presets":
		err = runPresets(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: halook <command> [args]  (version %s)\n", config.AppVersion)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  render  -in photo.jpg -out graded.jpg [-preset look.xmp] [-intensity 1] [-crop x,y,w,h] [-ratio 1.5] [-smart] [-q 92]")
	fmt.Fprintln(os.Stderr, "  serve   [-addr 127.0.0.1:49452] [-presets dir] [-sources dir]")
	fmt.Fprintln(os.Stderr, "  presets [-dir dir] [-json]")
	fmt.Fprintln(os.Stderr, "Every command accepts -config path/to/config.json.")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.GetConfig(), nil
	}
	return config.Load(path)
}

func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	tuning, err := grade.TuningFrom(cfg.Tuning)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(render.Options{
		Quality:     cfg.EncodingQuality,
		Workers:     cfg.Workers,
		MinCropSize: cfg.MinCropSize,
		Tuning:      tuning,
	}), nil
}

// loadFaceDetector loads the configured face model. A missing or unusable
// model disables face boost instead of failing the command.
func loadFaceDetector(path string) *render.FaceDetector {
	if path == "" {
		return nil
	}
	d, err := render.LoadFaceDetector(path, render.DefaultFaceOptions())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("No face model at %s, face boost disabled", path)
		} else {
			log.Printf("Warning: Failed to load face detection model: %v. Face boost will be disabled.", err)
		}
		return nil
	}
	return d
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	inPath := fs.String("in", "", "source image")
	outPath := fs.String("out", "", "output JPEG")
	presetPath := fs.String("preset", "", "preset file (.xmp, .json or key = value text)")
	intensity := fs.Float64("intensity", 1, "look strength in [0, 1]")
	cropSpec := fs.String("crop", "", "normalized crop x,y,w,h")
	ratio := fs.Float64("ratio", 0, "output aspect ratio (width / height)")
	smart := fs.Bool("smart", false, "pick the crop for -ratio by content")
	q := fs.Int("q", 0, "JPEG quality (default from config)")
	cfgPath := fs.String("config", "", "config file")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *q > 0 {
		cfg.EncodingQuality = *q
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	data, err := os.ReadFile(filepath.Clean(*inPath))
	if err != nil {
		return err
	}
	src, _, err := render.Decode(ctx, data)
	if err != nil {
		return err
	}

	l := look.NeutralLook()
	if *presetPath != "" {
		payload, err := os.ReadFile(filepath.Clean(*presetPath))
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(filepath.Base(*presetPath), filepath.Ext(*presetPath))
		l = preset.ParsePayload(payload, stem)
	}

	region := crop.Full
	if *cropSpec != "" {
		if region, err = parseCrop(*cropSpec); err != nil {
			return err
		}
	}
	if *ratio > 0 {
		if *smart {
			if region, err = render.SuggestCropWithFaces(ctx, src, *ratio, loadFaceDetector(cfg.FaceModel)); err != nil {
				return err
			}
		} else {
			b := src.Bounds()
			imageAspect := float64(b.Dx()) / float64(b.Dy())
			region = crop.ForRatio(region, *ratio/imageAspect)
		}
	}

	res, err := renderer.Export(ctx, render.Request{
		Source:    src,
		Look:      l,
		Intensity: *intensity,
		Crop:      &region,
	})
	if err != nil {
		return err
	}
	if err := writeFileAtomic(*outPath, res.JPEG); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: %dx%d\n", *outPath, res.Width, res.Height)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default from config)")
	presetDir := fs.String("presets", "", "preset directory (default from config)")
	sourceDir := fs.String("sources", "", "directory sessions may load images from")
	cfgPath := fs.String("config", "", "config file")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}
	if *presetDir != "" {
		cfg.PresetDir = *presetDir
	}

	ok, err := acquireLock()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("another %s bridge is already running", config.AppName)
	}
	defer releaseLock()

	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	server := api.NewServer(renderer, api.Config{
		Addr:           cfg.ServerAddr,
		PreviewFPS:     cfg.PreviewFPS,
		PreviewQuality: cfg.PreviewQuality,
		SourceDir:      *sourceDir,
	})
	server.SetFaceDetector(loadFaceDetector(cfg.FaceModel))
	if info, err := os.Stat(cfg.PresetDir); err == nil && info.IsDir() {
		server.SetCatalog(preset.NewCatalog(preset.DirSource{Dir: cfg.PresetDir}))
	} else {
		log.Printf("Preset directory %s not available, /presets disabled", cfg.PresetDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down bridge...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func runPresets(args []string) error {
	fs := flag.NewFlagSet("presets", flag.ContinueOnError)
	dir := fs.String("dir", "", "preset directory (default from config)")
	asJSON := fs.Bool("json", false, "print the parsed looks as JSON")
	cfgPath := fs.String("config", "", "config file")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dir == "" {
		cfg, err := loadConfig(*cfgPath)
		if err != nil {
			return err
		}
		*dir = cfg.PresetDir
	}

	presets, err := preset.NewCatalog(preset.DirSource{Dir: *dir}).Presets(context.Background(), false)
	if err != nil {
		return err
	}
	return printPresets(os.Stdout, presets, *asJSON)
}

func printPresets(w io.Writer, presets []preset.Preset, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(presets)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXPOSURE\tCONTRAST\tSATURATION")
	for _, p := range presets {
		a := p.Look.Adjustments
		fmt.Fprintf(tw, "%s\t%s\t%+.2f\t%.2f\t%.2f\n", p.ID, p.Name, a.Exposure, a.Contrast, a.Saturation)
	}
	return tw.Flush()
}

// parseCrop reads "x,y,w,h" in normalized units.
func parseCrop(s string) (crop.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return crop.Rect{}, fmt.Errorf("crop %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return crop.Rect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = f
	}
	return crop.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

// writeFileAtomic writes data next to path and renames it into place, so
// path is never left holding a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".halook-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
