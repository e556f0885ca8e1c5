// Package ebitenview runs a stage3d editor in an Ebitengine window.
//
// Game polls ebiten input and routes it to the editor's viewport the way a
// browser routes DOM events: the middle button drags the camera through the
// global listeners, the wheel zooms, bracket keys change the field of view and
// a left click selects the topmost leaf under the cursor. Leaves are drawn as
// projected flat quads in paint order.
package ebitenview

import (
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/stage3d"
)

// wheelLineHeight converts ebiten's wheel offset (in lines, positive up) to
// DOM-style deltaY pixels (positive down).
const wheelLineHeight = 100

var pointerButtons = [...]struct {
	eb ebiten.MouseButton
	mb stage3d.MouseButton
}{
	{ebiten.MouseButtonLeft, stage3d.MouseButtonLeft},
	{ebiten.MouseButtonRight, stage3d.MouseButtonRight},
	{ebiten.MouseButtonMiddle, stage3d.MouseButtonMiddle},
}

// Game implements ebiten.Game for an editor.
type Game struct {
	Editor *stage3d.Editor

	// Actions maps keys to editor commands. They do not fire while a
	// rename is being typed.
	Actions map[ebiten.Key]func()

	cfg   RunConfig
	log   logrus.FieldLogger
	clear color.RGBA
	r     renderer
	fps   fpsOverlay

	width, height int
	lastX, lastY  int

	renaming string
	nameBuf  []rune
}

// NewGame wraps editor. Zero fields of cfg take their defaults.
func NewGame(editor *stage3d.Editor, cfg RunConfig, log logrus.FieldLogger) *Game {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logrus.StandardLogger()
	}
	bg, ok := parseColor(cfg.ClearColor)
	if !ok {
		log.WithField("color", cfg.ClearColor).Warn("unknown clear color")
		bg = color.RGBA{A: 0xff}
	}
	return &Game{
		Editor:  editor,
		Actions: make(map[ebiten.Key]func()),
		cfg:     cfg,
		log:     log,
		clear:   bg,
		width:   cfg.Width,
		height:  cfg.Height,
	}
}

// Run opens a window and runs the editor until it is closed. A script named
// by cfg.ScriptPath is attached before the first frame.
func Run(editor *stage3d.Editor, cfg RunConfig, log logrus.FieldLogger) error {
	g := NewGame(editor, cfg, log)
	return g.Run()
}

// Run opens the window for g.
func (g *Game) Run() error {
	if g.cfg.ScriptPath != "" {
		data, err := os.ReadFile(g.cfg.ScriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := stage3d.LoadTestScript(data)
		if err != nil {
			return err
		}
		g.Editor.SetTestRunner(runner)
	}
	if g.cfg.Debug {
		g.Editor.SetDebugMode(true)
	}
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

// StartRename begins typing a new name for the selected node.
func (g *Game) StartRename() {
	id, ok := g.Editor.Selected()
	if !ok {
		return
	}
	n, err := g.Editor.Node(id)
	if err != nil {
		return
	}
	g.renaming = id
	g.nameBuf = append(g.nameBuf[:0], []rune(n.Name)...)
}

// Renaming reports whether a rename is being typed.
func (g *Game) Renaming() bool {
	return g.renaming != ""
}

// Refocus animates the camera back to its home orientation.
func (g *Game) Refocus() {
	g.Editor.Camera().Refocus(g.cfg.RefocusSeconds, nil)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := 1 / float64(ebiten.TPS())
	// Injected input replaces real input while it is queued.
	if !g.Editor.Injecting() {
		g.processPointer()
		g.processWheel()
		g.processKeys()
	}
	g.Editor.Update(float32(dt))
	if g.cfg.ShowFPS {
		g.fps.update(dt)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.clear)
	g.r.drawFrame(screen, g.Editor.Frame(), float64(g.width)/2, float64(g.height)/2)
	if g.renaming != "" {
		ebitenutil.DebugPrintAt(screen, "rename: "+string(g.nameBuf)+"_", 4, g.height-20)
	}
	if g.cfg.ShowFPS {
		g.fps.draw(screen)
	}
	flushScreenshots(screen, g.Editor.TakeScreenshots(), g.cfg.ScreenshotDir, g.log)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) processPointer() {
	x, y := ebiten.CursorPosition()
	mods := readModifiers()
	if x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		g.Editor.Listeners().DispatchMove(stage3d.PointerEvent{X: float64(x), Y: float64(y), Modifiers: mods})
	}
	for _, b := range pointerButtons {
		ev := stage3d.PointerEvent{X: float64(x), Y: float64(y), Button: b.mb, Modifiers: mods}
		if inpututil.IsMouseButtonJustPressed(b.eb) && g.inViewport(x, y) {
			if !g.Editor.Viewport().PointerDown(ev) && b.mb == stage3d.MouseButtonLeft {
				g.selectAt(x, y)
			}
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			g.Editor.Listeners().DispatchUp(ev)
		}
	}
}

func (g *Game) processWheel() {
	_, yoff := ebiten.Wheel()
	if yoff == 0 {
		return
	}
	g.Editor.Viewport().Wheel(stage3d.WheelEvent{DeltaY: -yoff * wheelLineHeight, Modifiers: readModifiers()})
}

func (g *Game) processKeys() {
	inText := g.renaming != ""
	mods := readModifiers()
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		g.Editor.Viewport().Key(stage3d.KeyEvent{Key: stage3d.KeyBracketLeft, Modifiers: mods, InTextInput: inText})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		g.Editor.Viewport().Key(stage3d.KeyEvent{Key: stage3d.KeyBracketRight, Modifiers: mods, InTextInput: inText})
	}
	if inText {
		g.processRename()
		return
	}
	for k, fn := range g.Actions {
		if inpututil.IsKeyJustPressed(k) {
			fn()
		}
	}
}

func (g *Game) processRename() {
	g.nameBuf = ebiten.AppendInputChars(g.nameBuf)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(g.nameBuf) > 0 {
		g.nameBuf = g.nameBuf[:len(g.nameBuf)-1]
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.Editor.Rename(g.renaming, string(g.nameBuf))
		g.renaming = ""
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.renaming = ""
	}
}

func (g *Game) inViewport(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// selectAt selects the topmost leaf under the cursor, or clears the
// selection when the click lands on empty space.
func (g *Game) selectAt(x, y int) {
	id := pick(g.Editor.Frame(), float64(x)-float64(g.width)/2, float64(y)-float64(g.height)/2)
	if id == "" {
		g.Editor.ClearSelection()
		return
	}
	g.Editor.Select(id)
}

// readModifiers returns the currently held modifier keys.
func readModifiers() stage3d.KeyModifiers {
	var mods stage3d.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= stage3d.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= stage3d.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= stage3d.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= stage3d.ModMeta
	}
	return mods
}
