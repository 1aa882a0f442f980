// Package slideshow drives the live presentation: the playback state machine,
// its timer, and the fetches that feed it.
package slideshow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/danielrjepsen/Nory-sub001/internal/ambient"
	"github.com/danielrjepsen/Nory-sub001/internal/apiclient"
	"github.com/danielrjepsen/Nory-sub001/internal/domain/event"
	"github.com/danielrjepsen/Nory-sub001/internal/domain/media"
	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/metrics"
)

// SlideshowAppType is the app type carrying organizer slideshow settings
const SlideshowAppType = "slideshow"

// Source is the backend the engine reads from
type Source interface {
	FetchEventData(ctx context.Context, eventID string, preview bool) (*event.Event, error)
	FetchEventTheme(ctx context.Context, eventID string) *event.Theme
	FetchEventCategories(ctx context.Context, eventID string) ([]event.Category, error)
	FetchEventApps(ctx context.Context, eventID string) ([]apiclient.App, error)
	FetchEventPhotos(ctx context.Context, eventID string, categoryID *string, preview bool) ([]media.Photo, error)
	Track(eventID, eventType string, properties map[string]any)
}

// Options configures an Engine
type Options struct {
	EventID        string
	Preview        bool
	Speed          time.Duration
	PollInterval   time.Duration
	AmbientEnabled bool
	// AmbientPalette is a palette name, "random", or empty for theme colors
	AmbientPalette string
	RemoteURL      string
}

// Engine owns the presentation for one event. All scheduler mutations happen
// under mu; a single timer is re-armed at the scheduler deadline after each.
type Engine struct {
	opts    Options
	src     Source
	log     *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu           sync.Mutex
	sched        *Scheduler
	event        *event.Event
	theme        event.Theme
	categories   []event.Category
	eventErr     *FetchError
	photosErr    *FetchError
	eventPending bool
	photosLoaded bool
	online       bool
	showQR       bool
	timer        *time.Timer
	timerGen     uint64
	started      bool
	ctx          context.Context
	cancel       context.CancelFunc
	poller       *Poller

	eventFetch  apiclient.Latest
	metaFetch   apiclient.Latest
	photosFetch apiclient.Latest

	activities *feed.ActivityBuffer
	hearts     *feed.HeartBuffer
	ambient    *ambient.Generator

	subMu  sync.Mutex
	subSeq uint64
	subs   map[uint64]func()
}

// NewEngine creates an engine for opts.EventID. Nothing is fetched until Start.
func NewEngine(src Source, opts Options, m *metrics.Metrics) *Engine {
	theme := event.DefaultTheme()
	e := &Engine{
		opts:         opts,
		src:          src,
		log:          logger.Engine(opts.EventID),
		metrics:      m,
		now:          time.Now,
		sched:        NewScheduler(opts.Speed),
		theme:        theme,
		eventPending: true,
		showQR:       true,
		activities:   feed.NewActivityBuffer(),
		ambient:      ambient.NewGenerator(theme),
		subs:         make(map[uint64]func()),
	}
	e.hearts = feed.NewHeartBuffer(feed.WithOnChange(e.notify))
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e
}

// Start loads the event and its photos, then begins polling for new uploads.
// Load failures become display state rather than errors.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	runCtx := e.ctx
	e.mu.Unlock()

	e.ambient.SetEnabled(e.opts.AmbientEnabled)
	e.Load(runCtx)

	if e.opts.PollInterval > 0 {
		poller, err := NewPoller(e.opts.PollInterval, func() { e.Poll(runCtx) })
		if err != nil {
			return err
		}
		e.mu.Lock()
		if runCtx.Err() != nil {
			e.mu.Unlock()
			return runCtx.Err()
		}
		e.poller = poller
		poller.Start()
		e.mu.Unlock()
	}

	e.log.Info("Slideshow started", "preview", e.opts.Preview, "speed", SpeedName(e.Speed()))
	e.src.Track(e.opts.EventID, "slideshow_started", map[string]any{"preview": e.opts.Preview})
	return nil
}

// Close stops polling, timers and animation loops
func (e *Engine) Close() {
	e.mu.Lock()
	poller := e.poller
	e.poller = nil
	e.cancel()
	e.stopTimerLocked()
	e.mu.Unlock()

	if poller != nil {
		if err := poller.Stop(); err != nil {
			e.log.Warn("Poller did not stop cleanly", "error", err)
		}
	}
	e.eventFetch.Cancel()
	e.metaFetch.Cancel()
	e.photosFetch.Cancel()
	e.hearts.Close()
	e.ambient.Close()
}

// Load fetches everything the display needs: event, theme, categories, app
// settings and the photo list.
func (e *Engine) Load(ctx context.Context) {
	e.loadEvent(ctx)
	e.loadMeta(ctx)
	e.loadPhotos(ctx)
}

// Poll refreshes the event status and the photo list
func (e *Engine) Poll(ctx context.Context) {
	e.loadEvent(ctx)
	e.loadPhotos(ctx)
	if e.activities.Prune(e.now()) {
		e.notify()
	}
}

func (e *Engine) loadEvent(ctx context.Context) {
	fctx, ticket := e.eventFetch.Begin(ctx)
	ev, err := e.src.FetchEventData(fctx, e.opts.EventID, e.opts.Preview)

	e.mu.Lock()
	if !e.eventFetch.Current(ticket) {
		e.mu.Unlock()
		return
	}
	e.eventFetch.Finish(ticket)

	if err != nil {
		if apiclient.IsAbort(err) {
			e.mu.Unlock()
			return
		}
		e.eventErr = newFetchError("event", err)
		e.eventPending = false
		e.online = false
		e.mu.Unlock()
		e.metrics.Fetch("event", "error")
		e.log.Warn("Failed to fetch event", "status", e.eventErr.Status, "error", e.eventErr.Message)
		e.notify()
		return
	}

	prev := e.event
	e.event = ev
	e.eventErr = nil
	e.eventPending = false
	e.online = true
	e.mu.Unlock()

	e.metrics.Fetch("event", "ok")
	if prev != nil && prev.Status != ev.Status {
		e.log.Info("Event status changed", "from", prev.Status, "to", ev.Status)
	}
	e.notify()
}

func (e *Engine) loadMeta(ctx context.Context) {
	fctx, ticket := e.metaFetch.Begin(ctx)

	theme := e.src.FetchEventTheme(fctx, e.opts.EventID)
	categories, catErr := e.src.FetchEventCategories(fctx, e.opts.EventID)
	apps, appsErr := e.src.FetchEventApps(fctx, e.opts.EventID)

	e.mu.Lock()
	if !e.metaFetch.Current(ticket) {
		e.mu.Unlock()
		return
	}
	e.metaFetch.Finish(ticket)

	if theme != nil {
		e.theme = theme.WithDefaults()
	} else {
		e.theme = event.DefaultTheme()
	}

	if catErr == nil {
		e.categories = categories
	} else if !apiclient.IsAbort(catErr) {
		e.metrics.Fetch("categories", "error")
		e.log.Warn("Failed to fetch categories", "error", catErr)
	}

	palette := e.opts.AmbientPalette
	if appsErr == nil {
		if p := e.applyAppConfigLocked(apps); p != "" {
			palette = p
		}
	} else if !apiclient.IsAbort(appsErr) {
		e.metrics.Fetch("apps", "error")
		e.log.Warn("Failed to fetch event apps", "error", appsErr)
	}
	e.rearmLocked()
	current := e.theme
	e.mu.Unlock()

	e.applyPalette(current, palette)
	e.notify()
}

// applyAppConfigLocked reads organizer settings from the slideshow app and
// returns the configured palette, if any.
func (e *Engine) applyAppConfigLocked(apps []apiclient.App) string {
	app, ok := lo.Find(apps, func(a apiclient.App) bool {
		return a.AppType == SlideshowAppType && a.IsEnabled
	})
	if !ok || len(app.Config) == 0 {
		return ""
	}

	cfg := gjson.ParseBytes(app.Config)
	if speed := cfg.Get("speed"); speed.Exists() {
		if d, err := ParseSpeed(speed.String()); err == nil {
			e.sched.SetSpeed(d, e.now())
		} else {
			e.log.Warn("Ignoring slideshow speed from app config", "value", speed.String(), "error", err)
		}
	}
	if qr := cfg.Get("showQrCode"); qr.Exists() {
		e.showQR = qr.Bool()
	}
	if cfg.Get("randomPalette").Bool() {
		return "random"
	}
	return cfg.Get("palette").String()
}

func (e *Engine) applyPalette(theme event.Theme, palette string) {
	switch strings.ToLower(palette) {
	case "":
		e.ambient.UseTheme(theme)
	case "random":
		p := e.ambient.UseRandomPalette()
		logger.Ambient().Debug("Using random palette", "palette", p.Name)
	default:
		if err := e.ambient.UsePalette(palette); err != nil {
			logger.Ambient().Warn("Unknown palette, using theme colors", "palette", palette)
			e.ambient.UseTheme(theme)
		}
	}
}

func (e *Engine) loadPhotos(ctx context.Context) {
	e.mu.Lock()
	fctx, ticket, categoryID := e.beginPhotosLocked(ctx)
	e.mu.Unlock()

	e.fetchPhotos(fctx, ticket, categoryID)
}

// beginPhotosLocked supersedes any photo fetch in flight. It must run in the
// same critical section that decides the category being fetched.
func (e *Engine) beginPhotosLocked(ctx context.Context) (context.Context, apiclient.Ticket, *string) {
	fctx, ticket := e.photosFetch.Begin(ctx)
	return fctx, ticket, e.sched.CategoryID()
}

func (e *Engine) fetchPhotos(ctx context.Context, ticket apiclient.Ticket, categoryID *string) {
	photos, err := e.src.FetchEventPhotos(ctx, e.opts.EventID, categoryID, e.opts.Preview)

	e.mu.Lock()
	if !e.photosFetch.Current(ticket) {
		e.mu.Unlock()
		return
	}
	e.photosFetch.Finish(ticket)

	if err != nil {
		if apiclient.IsAbort(err) {
			e.mu.Unlock()
			return
		}
		e.photosErr = newFetchError("photos", err)
		e.online = false
		if e.sched.State() == StateLoading {
			e.sched.SetPhotos(nil, e.now())
		}
		e.rearmLocked()
		e.mu.Unlock()
		e.metrics.Fetch("photos", "error")
		e.log.Warn("Failed to fetch photos", "status", e.photosErr.Status, "error", e.photosErr.Message)
		e.notify()
		return
	}

	var fresh []media.Photo
	if e.photosLoaded && e.sched.State() != StateLoading {
		fresh = newPhotos(e.sched.Photos(), photos)
	}
	e.photosErr = nil
	e.online = true
	e.photosLoaded = true
	e.sched.SetPhotos(photos, e.now())
	e.rearmLocked()
	e.mu.Unlock()

	e.metrics.Fetch("photos", "ok")
	for _, p := range fresh {
		e.activities.Add(feed.Activity{
			Type:    feed.ActivityUpload,
			Message: fmt.Sprintf("New %s shared", p.Type),
		})
	}
	e.notify()
}

func newPhotos(prev, next []media.Photo) []media.Photo {
	seen := lo.SliceToMap(prev, func(p media.Photo) (string, struct{}) {
		return p.ID, struct{}{}
	})
	return lo.Filter(next, func(p media.Photo, _ int) bool {
		_, ok := seen[p.ID]
		return !ok
	})
}

// SelectCategory switches the category filter and reloads photos. A nil id
// shows every category.
func (e *Engine) SelectCategory(ctx context.Context, categoryID *string) error {
	e.mu.Lock()
	if categoryID != nil {
		known := lo.ContainsBy(e.categories, func(c event.Category) bool { return c.ID == *categoryID })
		if !known {
			e.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownCategory, *categoryID)
		}
	}
	e.sched.BeginCategory(categoryID)
	fctx, ticket, _ := e.beginPhotosLocked(ctx)
	e.rearmLocked()
	e.mu.Unlock()

	e.notify()
	e.src.Track(e.opts.EventID, "slideshow_category_changed", map[string]any{"categoryId": lo.FromPtr(categoryID)})
	e.fetchPhotos(fctx, ticket, categoryID)
	return nil
}

// Refresh re-fetches everything; used by the retry action on error screens
func (e *Engine) Refresh(ctx context.Context) {
	e.Load(ctx)
}

// Next moves to the following slide
func (e *Engine) Next() bool {
	return e.mutate(func(s *Scheduler, now time.Time) bool { return s.Next(now) }, CauseManual)
}

// Previous moves to the preceding slide
func (e *Engine) Previous() bool {
	return e.mutate(func(s *Scheduler, now time.Time) bool { return s.Previous(now) }, CauseManual)
}

func (e *Engine) Pause() bool {
	return e.mutate(func(s *Scheduler, _ time.Time) bool { return s.Pause() }, "")
}

func (e *Engine) Play() bool {
	return e.mutate(func(s *Scheduler, now time.Time) bool { return s.Play(now) }, "")
}

func (e *Engine) TogglePlay() bool {
	return e.mutate(func(s *Scheduler, now time.Time) bool { return s.TogglePlay(now) }, "")
}

// SetSpeed changes the image interval
func (e *Engine) SetSpeed(d time.Duration) bool {
	return e.mutate(func(s *Scheduler, now time.Time) bool { return s.SetSpeed(d, now) }, "")
}

// Speed returns the current image interval
func (e *Engine) Speed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Speed()
}

// VideoStarted reports that the display began playing photoID
func (e *Engine) VideoStarted(photoID string) bool {
	return e.mutate(func(s *Scheduler, _ time.Time) bool { return s.VideoStarted(photoID) }, "")
}

// VideoEnded reports that photoID played to the end
func (e *Engine) VideoEnded(photoID string) bool {
	return e.mutate(func(s *Scheduler, now time.Time) bool { return s.VideoEnded(photoID, now) }, "")
}

// MediaFailed reports that photoID could not be displayed. The slide is
// skipped and the failure is logged to the activity feed.
func (e *Engine) MediaFailed(photoID, reason string) bool {
	e.mu.Lock()
	cur := e.sched.Current()
	if cur.ID != photoID || cur.IsLoading() {
		e.mu.Unlock()
		return false
	}
	advanced := e.sched.MediaFailed(photoID, e.now())
	e.rearmLocked()
	e.mu.Unlock()

	if reason == "" {
		reason = "playback error"
	}
	e.metrics.MediaFailure(string(cur.Type))
	if advanced {
		e.metrics.Advance(string(CauseFailure))
	}
	e.log.Warn("Skipping media", "photo", cur.ID, "type", cur.Type, "reason", reason)
	e.activities.Add(feed.Activity{
		Type:    feed.ActivityMediaFailure,
		Message: fmt.Sprintf("Skipped %s (%s)", cur.Name, reason),
	})
	e.notify()
	return true
}

// AddHeart animates a guest reaction. Duplicates of an in-flight id are dropped.
func (e *Engine) AddHeart(h feed.Heart) (feed.FloatingHeart, bool) {
	if h.Timestamp.IsZero() {
		h.Timestamp = e.now()
	}
	fh, ok := e.hearts.Accept(h)
	e.metrics.Heart(ok)
	if ok {
		e.notify()
	}
	return fh, ok
}

// AddActivity appends an entry to the activity feed
func (e *Engine) AddActivity(a feed.Activity) feed.Activity {
	a = e.activities.Add(a)
	e.notify()
	return a
}

// SetAmbient turns the background animation on or off
func (e *Engine) SetAmbient(enabled bool) {
	e.ambient.SetEnabled(enabled)
	e.notify()
}

func (e *Engine) mutate(fn func(*Scheduler, time.Time) bool, cause Cause) bool {
	e.mu.Lock()
	changed := fn(e.sched, e.now())
	if changed {
		e.rearmLocked()
	}
	e.mu.Unlock()

	if changed {
		if cause != "" {
			e.metrics.Advance(string(cause))
		}
		e.notify()
	}
	return changed
}

func (e *Engine) stopTimerLocked() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// rearmLocked replaces the advance timer with one due at the scheduler deadline
func (e *Engine) rearmLocked() {
	e.stopTimerLocked()
	if e.ctx.Err() != nil {
		return
	}
	due, ok := e.sched.Deadline()
	if !ok {
		return
	}
	wait := due.Sub(e.now())
	if wait < 0 {
		wait = 0
	}
	gen := e.timerGen
	e.timer = time.AfterFunc(wait, func() { e.onTimer(gen) })
}

func (e *Engine) onTimer(gen uint64) {
	e.mu.Lock()
	if gen != e.timerGen {
		e.mu.Unlock()
		return
	}
	cause, advanced := e.sched.Fire(e.now())
	e.rearmLocked()
	e.mu.Unlock()

	if advanced {
		e.metrics.Advance(string(cause))
		e.notify()
	}
}

// Subscribe registers fn to run after every state change. fn must not block.
func (e *Engine) Subscribe(fn func()) (unsubscribe func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.subSeq++
	id := e.subSeq
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) notify() {
	e.subMu.Lock()
	fns := lo.Values(e.subs)
	e.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
