package flames

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"os"
	"strings"
	"time"
)

func Run(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	flame, err := cfg.Flame.Build()
	if err != nil {
		return err
	}

	opts := Options{Workers: cfg.Workers, Seed: cfg.Seed}
	if Workers > 0 {
		opts.Workers = Workers
	}
	if Seed != 0 {
		opts.Seed = Seed
	}
	mode := cfg.Accumulation
	if Accumulation != "" {
		mode = Accumulation
	}
	if opts.Accumulation, err = ParseAccumulationMode(mode); err != nil {
		return err
	}
	timeout := Timeout
	if timeout == 0 && cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec * Real(time.Second))
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r := NewRenderer(flame, opts)
	r.SetProgressUpdater(&ConsoleProgress{})
	info := RenderInfo{RenderHDR: TIFF, RenderHDRIntensityMap: cfg.Output.Intensity != ""}

	var state *RenderState
	if cfg.Output.State != "" {
		state, err = LoadRenderState(cfg.Output.State)
		switch {
		case errors.Is(err, ErrCheckpointVersion):
			Logger().Warn("ignoring saved render state", "path", cfg.Output.State, "err", err)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}

	start := time.Now()
	if state != nil {
		DebugLog("Resuming from %s", cfg.Output.State)
		err = r.ResumeRenderFlame(ctx, info, state)
		if errors.Is(err, ErrStateMismatch) {
			Logger().Warn("ignoring saved render state", "path", cfg.Output.State, "err", err)
			state = nil
		}
	}
	if state == nil {
		err = r.StartRenderFlame(ctx, info)
	}
	if err != nil {
		return err
	}
	var frames []image.Image
	if GIF {
		frames = collectPreviews(r, cfg.Output.GIFFrames)
	}
	if err := r.Wait(); err != nil {
		return err
	}
	rf, err := r.FinishRenderFlame()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	DebugLog("Samples: %d, time: %s", rf.Samples, elapsed)
	if Debug {
		Logger().Debug("iteration stats", "stats", rf.Stats.String())
	}

	switch {
	case cfg.Output.State == "":
	case ctx.Err() != nil:
		st, err := r.SaveState()
		if err != nil {
			return err
		}
		if err := st.Save(cfg.Output.State); err != nil {
			return err
		}
		DebugLog("Saved render state: %s", cfg.Output.State)
	default:
		// finished; a leftover state would otherwise be resumed by the next run
		if err := os.Remove(cfg.Output.State); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := SavePNG(rf.Image, cfg.Output.PNG); err != nil {
		return err
	}
	DebugLog("Saved PNG: %s", cfg.Output.PNG)

	if GIF {
		path := cfg.Output.GIF
		if path == "" {
			path = strings.Replace(cfg.Output.PNG, ".png", ".gif", 1)
		}
		frames = append(frames, Thumbnail(rf.Image, PreviewMaxSize, PreviewMaxSize))
		if err := SaveAnimatedGIF(frames, path, cfg.Output.GIFDelay); err != nil {
			return err
		}
		DebugLog("Saved animated GIF: %s (%d frames)", path, len(frames))
	}
	if RAW {
		path := cfg.Output.RAW
		if path == "" {
			path = strings.Replace(cfg.Output.PNG, ".png", ".raw", 1)
		}
		snap, err := r.Raster()
		if err != nil {
			return err
		}
		if err := snap.SaveRaw(path); err != nil {
			return err
		}
		DebugLog("Saved raw raster: %s", path)
	}
	if TIFF && rf.HDR != nil {
		path := cfg.Output.TIFF
		if path == "" {
			path = strings.Replace(cfg.Output.PNG, ".png", ".tiff", 1)
		}
		if err := SaveHDRTIFF(rf.HDR, path); err != nil {
			return err
		}
		DebugLog("Saved HDR TIFF: %s", path)
	}
	if rf.HDRIntensityMap != nil {
		if err := SaveIntensityPNG16(rf.HDRIntensityMap, cfg.Output.Intensity, flame.Gamma); err != nil {
			return err
		}
		DebugLog("Saved intensity map: %s", cfg.Output.Intensity)
	}
	return nil
}

// collectPreviews polls a running render and grabs a thumbnail every time
// another 1/frames of the budget is done.
func collectPreviews(r *Renderer, frames int) []image.Image {
	var out []image.Image
	next := int64(1)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for r.Running() {
		<-ticker.C
		cur, total := r.Progress()
		if total == 0 || next >= int64(frames) || cur*int64(frames) < total*next {
			continue
		}
		rf, err := r.Preview()
		if err != nil {
			continue
		}
		out = append(out, Thumbnail(rf.Image, PreviewMaxSize, PreviewMaxSize))
		next = cur*int64(frames)/total + 1
	}
	return out
}
