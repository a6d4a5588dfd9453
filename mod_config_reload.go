package lightdemo

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SceneWatcher reports writes to a scene file. It watches the file's
// directory so editors that replace the file on save are still seen.
type SceneWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewSceneWatcher(path string) (*SceneWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("scene watcher: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scene watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("scene watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	sw := &SceneWatcher{
		watcher: w,
		path:    abs,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (w *SceneWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *SceneWatcher) run() {
	defer close(w.done)
	last := time.Time{}
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			now := time.Now()
			if now.Sub(last) < 100*time.Millisecond {
				continue
			}
			last = now
			select {
			case w.Events <- w.path:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// SceneReload is the resource the reload system drains. Changed carries
// paths of scene files to re-read.
type SceneReload struct {
	Path    string
	Changed <-chan string
	Errors  <-chan error
}

// ConfigReloadModule watches Path and re-applies it to the scene spawned
// by SceneModule whenever it changes. Install SceneModule first.
type ConfigReloadModule struct {
	Path string
}

func (m ConfigReloadModule) Install(app *App, cmd *Commands) {
	watcher, err := NewSceneWatcher(m.Path)
	if err != nil {
		app.Logger().Errorf("scene reload disabled: %v", err)
		return
	}
	cmd.AddResources(watcher, &SceneReload{
		Path:    m.Path,
		Changed: watcher.Events,
		Errors:  watcher.Errors,
	})
	app.UseSystem(
		System(sceneReloadSystem).
			InStage(Prelude),
	)
}

func sceneReloadSystem(cmd *Commands, reload *SceneReload, idx *SceneIndex) {
	for {
		select {
		case path, ok := <-reload.Changed:
			if !ok {
				return
			}
			reloadScene(cmd, path, idx)
		case err, ok := <-reload.Errors:
			if ok {
				cmd.Logger().Warnf("scene watcher: %v", err)
			}
			return
		default:
			return
		}
	}
}

func reloadScene(cmd *Commands, path string, idx *SceneIndex) {
	cfg, err := LoadSceneConfig(path)
	if err != nil {
		cmd.Logger().Warnf("scene reload skipped: %v", err)
		return
	}
	ApplyScene(cmd, cfg, idx)
	cmd.Logger().Infof("scene reloaded from %s", path)
}
