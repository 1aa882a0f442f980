// Package shell composes a display frame from the engine view. It holds no
// state of its own.
package shell

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/danielrjepsen/Nory-sub001/internal/ambient"
	"github.com/danielrjepsen/Nory-sub001/internal/domain/event"
	"github.com/danielrjepsen/Nory-sub001/internal/domain/media"
	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/screen"
	"github.com/danielrjepsen/Nory-sub001/internal/slideshow"
)

// LayerKind names an overlay of the live view
type LayerKind string

// Layers in z-order, lowest first
const (
	LayerBackground LayerKind = "background"
	LayerAmbient    LayerKind = "ambient"
	LayerMedia      LayerKind = "media"
	LayerHearts     LayerKind = "hearts"
	LayerConnection LayerKind = "connection"
	LayerQR         LayerKind = "qr"
	LayerCounter    LayerKind = "counter"
	LayerActivity   LayerKind = "activity"
)

var zOrder = []LayerKind{
	LayerBackground,
	LayerAmbient,
	LayerMedia,
	LayerHearts,
	LayerConnection,
	LayerQR,
	LayerCounter,
	LayerActivity,
}

// ZIndex returns the stacking position of k, or -1 for unknown layers
func ZIndex(k LayerKind) int {
	return lo.IndexOf(zOrder, k)
}

// Layer is one overlay with its payload
type Layer struct {
	Kind  LayerKind `json:"kind"`
	Z     int       `json:"z"`
	Props any       `json:"props"`
}

type Background struct {
	Color string `json:"color"`
	Text  string `json:"textColor"`
	Font  string `json:"fontFamily,omitempty"`
}

type MediaProps struct {
	Photo     media.Photo `json:"photo"`
	Autoplay  bool        `json:"autoplay"`
	Muted     bool        `json:"muted"`
	FitScreen bool        `json:"fitScreen"`
}

type ConnectionProps struct {
	Online  bool   `json:"online"`
	Label   string `json:"label"`
	Preview bool   `json:"preview"`
}

type QRProps struct {
	URL   string `json:"url"`
	Image string `json:"image"`
}

type CounterProps struct {
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Label    string `json:"label"`
}

// Frame is what a screen draws. Live frames carry layers; the other screens
// carry only the full-screen message.
type Frame struct {
	EventID   string             `json:"eventId"`
	EventName string             `json:"eventName,omitempty"`
	Screen    screen.Screen      `json:"screen"`
	Theme     event.Theme        `json:"theme"`
	Layers    []Layer            `json:"layers"`
	Playback  slideshow.Snapshot `json:"playback"`
}

// QRImagePath is where the QR badge image is served
const QRImagePath = "/api/v1/slideshow/qr.png"

// Compose builds the frame for v
func Compose(v slideshow.View) Frame {
	f := Frame{
		EventID:  v.EventID,
		Screen:   v.Screen,
		Theme:    v.Theme,
		Playback: v.Playback,
	}
	if v.Event != nil {
		f.EventName = v.Event.Name
	}

	f.add(LayerBackground, Background{
		Color: v.Theme.BackgroundColor,
		Text:  v.Theme.TextColor,
		Font:  v.Theme.FontFamily,
	})

	if v.Screen.Kind != screen.KindLive {
		if v.Screen.ShowQR && v.RemoteURL != "" {
			f.add(LayerQR, QRProps{URL: v.RemoteURL, Image: QRImagePath})
		}
		return f
	}

	if v.Ambient.Enabled {
		f.add(LayerAmbient, v.Ambient)
	} else {
		f.add(LayerAmbient, ambient.State{Colors: v.Ambient.Colors, Palette: v.Ambient.Palette})
	}

	current := v.Playback.Current
	f.add(LayerMedia, MediaProps{
		Photo:     current,
		Autoplay:  current.IsVideo() && !v.Playback.Paused,
		Muted:     true,
		FitScreen: true,
	})

	if len(v.Hearts) > 0 {
		f.add(LayerHearts, v.Hearts)
	}

	f.add(LayerConnection, ConnectionProps{
		Online:  v.Online,
		Label:   connectionLabel(v.Online),
		Preview: v.Screen.Preview,
	})

	if v.ShowQR {
		f.add(LayerQR, QRProps{URL: v.RemoteURL, Image: QRImagePath})
	}

	if v.Playback.Total > 0 {
		f.add(LayerCounter, CounterProps{
			Position: v.Playback.Index + 1,
			Total:    v.Playback.Total,
			Label:    fmt.Sprintf("%d / %d", v.Playback.Index+1, v.Playback.Total),
		})
	}

	if len(v.Activities.Visible) > 0 {
		f.add(LayerActivity, v.Activities)
	}
	return f
}

func (f *Frame) add(kind LayerKind, props any) {
	f.Layers = append(f.Layers, Layer{Kind: kind, Z: ZIndex(kind), Props: props})
}

func connectionLabel(online bool) string {
	if online {
		return "Live"
	}
	return "Reconnecting"
}

// Hearts returns the hearts layer payload of f, if present
func (f Frame) Hearts() []feed.FloatingHeart {
	for _, l := range f.Layers {
		if h, ok := l.Props.([]feed.FloatingHeart); ok && l.Kind == LayerHearts {
			return h
		}
	}
	return nil
}

// Layer returns the layer of kind k, if present
func (f Frame) Layer(k LayerKind) (Layer, bool) {
	for _, l := range f.Layers {
		if l.Kind == k {
			return l, true
		}
	}
	return Layer{}, false
}
