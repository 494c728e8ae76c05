// Package demo provides the home-automation handlers compiled into the conduit binary,
// together with a manifest that routes to them.
package demo

import (
	"context"
	_ "embed"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/conduit/pkg/symbols"
)

//go:embed manifest.yaml
var manifestYAML []byte

// Manifest returns the demo manifest.
func Manifest() []byte {
	return append([]byte(nil), manifestYAML...)
}

// Assembly is the assembly every demo symbol is registered under.
const Assembly = "Home"

// Color is a light color.
type Color string

// Room is a room name.
type Room string

// Light is the state of the lights of one room.
type Light struct {
	On    bool  `json:"on"`
	Color Color `json:"color,omitempty"`
	Level int   `json:"level"`
}

// Home holds the simulated device state. It is safe for concurrent use.
type Home struct {
	mu     sync.Mutex
	lights map[Room]Light
	timer  time.Duration
}

// NewHome creates a home with every light off.
func NewHome() *Home {
	return &Home{lights: make(map[Room]Light)}
}

// TurnOn switches a room's lights on.
func (h *Home) TurnOn(room Room) string {
	return h.TurnOnColor(room, "")
}

// TurnOnColor switches a room's lights on with a color.
func (h *Home) TurnOnColor(room Room, color Color) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lights[room] = Light{On: true, Color: color, Level: 100}
	if color == "" {
		return fmt.Sprintf("lights on in the %s", room)
	}
	return fmt.Sprintf("%s lights on in the %s", color, room)
}

// TurnOff switches a room's lights off.
func (h *Home) TurnOff(room Room) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lights[room] = Light{}
	return fmt.Sprintf("lights off in the %s", room)
}

// Dim sets a room's brightness in percent.
func (h *Home) Dim(room Room, level int) (string, error) {
	if level < 0 || level > 100 {
		return "", fmt.Errorf("brightness %d is out of range", level)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	l := h.lights[room]
	l.On, l.Level = level > 0, level
	h.lights[room] = l
	return fmt.Sprintf("%s dimmed to %d%%", room, level), nil
}

// SetTimer starts a timer.
func (h *Home) SetTimer(ctx context.Context, minutes int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if minutes <= 0 {
		return "", fmt.Errorf("timer needs a positive duration, got %d", minutes)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.timer = time.Duration(minutes) * time.Minute
	return fmt.Sprintf("timer set for %s", h.timer), nil
}

// CancelTimer stops the timer.
func (h *Home) CancelTimer() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.timer = 0
	return "timer cancelled"
}

// Light returns the state of a room's lights.
func (h *Home) Light(room Room) Light {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lights[room]
}

// Timer returns the running timer, or zero.
func (h *Home) Timer() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timer
}

// Rooms lists the rooms whose lights are on.
func (h *Home) Rooms() []Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	var rooms []Room
	for r, l := range h.lights {
		if l.On {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
	return rooms
}

// Apologize is the error handler of the demo.
func Apologize(intent, reason string) string {
	first, _, _ := strings.Cut(reason, "; ")
	return fmt.Sprintf("sorry, I could not %s (%s)", strings.ReplaceAll(intent, "_", " "), first)
}

// Register declares the demo types and handlers of h in table.
func Register(table *symbols.Table, h *Home) error {
	if err := table.RegisterType("Home.Color", Assembly, reflect.TypeOf(Color(""))); err != nil {
		return err
	}
	if err := table.RegisterType("Home.Room", Assembly, reflect.TypeOf(Room(""))); err != nil {
		return err
	}

	methods := []symbols.Method{
		{Owner: "Home.Lights", Name: "TurnOn", Func: h.TurnOnColor, Marker: symbols.Action(), Params: []string{"room", "color"}},
		{Owner: "Home.Lights", Name: "TurnOn", Func: h.TurnOn, Marker: symbols.Action(), Params: []string{"room"}},
		{Owner: "Home.Lights", Name: "TurnOff", Func: h.TurnOff, Marker: symbols.Action(), Params: []string{"room"}},
		{Owner: "Home.Lights", Name: "Dim", Func: h.Dim, Marker: symbols.Action(symbols.WithConfidence(0.7, 1)), Params: []string{"room", "level"}},
		{Owner: "Home.Timer", Name: "Set", Func: h.SetTimer, Marker: symbols.Action(symbols.WithPartial()), Params: []string{"minutes"}},
		{Owner: "Home.Timer", Name: "Cancel", Func: h.CancelTimer, Marker: symbols.Action()},
		{Owner: "Home.Assistant", Name: "Apologize", Func: Apologize, Marker: symbols.ErrorHandler(), Params: []string{"intent", "reason"}},
	}
	for _, m := range methods {
		m.Assembly = Assembly
		if err := table.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// NewTable returns a symbol table holding the demo handlers of h.
func NewTable(h *Home) *symbols.Table {
	table := symbols.NewTable()
	if err := Register(table, h); err != nil {
		panic(err)
	}
	return table
}
