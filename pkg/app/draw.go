package app

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/utils"
)

// 界面配色
var (
	colorBackdrop  = color.RGBA{R: 24, G: 26, B: 32, A: 255}
	colorHotspot   = color.RGBA{R: 240, G: 200, B: 90, A: 160}
	colorPanel     = color.RGBA{R: 12, G: 12, B: 16, A: 220}
	colorText      = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	colorMuted     = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	colorAccent    = color.RGBA{R: 240, G: 200, B: 90, A: 255}
	colorCharacter = color.RGBA{R: 110, G: 170, B: 230, A: 255}
)

const (
	fontSize    = 16
	smallSize   = 13
	padding     = 12
	lineSpacing = 22
	sidebarW    = 220
)

// painter 把 Screen 状态绘制到 ebiten 图像上
type painter struct {
	face    *text.GoTextFace
	small   *text.GoTextFace
	strings *game.StringTable
	images  map[string]*ebiten.Image
	failed  map[string]bool
}

func newPainter(st *game.StringTable) (*painter, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to create font source: %w", err)
	}
	return &painter{
		face:    &text.GoTextFace{Source: src, Size: fontSize},
		small:   &text.GoTextFace{Source: src, Size: smallSize},
		strings: st,
		images:  make(map[string]*ebiten.Image),
		failed:  make(map[string]bool),
	}, nil
}

// loadImage 加载并缓存背景图片，失败只记录一次
func (p *painter) loadImage(ref string) *ebiten.Image {
	if img, ok := p.images[ref]; ok {
		return img
	}
	if p.failed[ref] {
		return nil
	}
	data, err := readAsset(ref)
	if err == nil {
		var img image.Image
		img, _, err = image.Decode(bytes.NewReader(data))
		if err == nil {
			eimg := ebiten.NewImageFromImage(img)
			p.images[ref] = eimg
			return eimg
		}
	}
	log.Printf("[App] Warning: 无法加载背景 %s: %v", ref, err)
	p.failed[ref] = true
	return nil
}

// draw 按层次绘制：背景 → 热点 → 角色 → 侧栏 → 对话 → 谜题 → 面板 → 通知 → 淡入淡出遮罩
func (p *painter) draw(dst *ebiten.Image, s *Screen) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	viewW := w - sidebarW

	dst.Fill(colorBackdrop)
	p.drawBackground(dst, s, viewW, h)
	p.drawHotspots(dst, s, viewW, h)
	p.drawCharacter(dst, s, viewW, h)
	p.drawSidebar(dst, s, viewW, w, h)

	if s.line != nil {
		p.drawDialogue(dst, s, viewW, h)
	}
	if s.puzzleView != nil {
		p.drawPuzzle(dst, s, viewW, h)
	}
	if s.panel != nil {
		p.drawPanel(dst, s, viewW, h)
	}
	p.drawNotifications(dst, s, viewW)

	if a := s.FadeAlpha(); a > 0 {
		vector.DrawFilledRect(dst, 0, 0, float32(viewW), float32(h), color.RGBA{A: uint8(a * 255)}, false)
	}
}

func (p *painter) drawBackground(dst *ebiten.Image, s *Screen, viewW, h int) {
	if s.background == "" {
		return
	}
	img := p.loadImage(s.background)
	if img == nil {
		p.text(dst, s.background, p.small, padding, padding, colorMuted)
		return
	}
	op := &ebiten.DrawImageOptions{}
	bw, bh := img.Bounds().Dx(), img.Bounds().Dy()
	op.GeoM.Scale(float64(viewW)/float64(bw), float64(h)/float64(bh))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

func (p *painter) drawHotspots(dst *ebiten.Image, s *Screen, viewW, h int) {
	for _, hs := range s.hotspots {
		x, y := utils.DenormalizePointer(hs.Rect.X, hs.Rect.Y, viewW, h)
		rw, rh := utils.DenormalizePointer(hs.Rect.W, hs.Rect.H, viewW, h)
		vector.StrokeRect(dst, float32(x), float32(y), float32(rw), float32(rh), 2, colorHotspot, true)
		p.text(dst, hs.Name, p.small, x+4, y+2, colorAccent)
	}
}

func (p *painter) drawCharacter(dst *ebiten.Image, s *Screen, viewW, h int) {
	if !s.charVisible {
		return
	}
	x, y := utils.DenormalizePointer(s.charPos.X, s.charPos.Y, viewW, h)
	vector.DrawFilledCircle(dst, float32(x), float32(y), 10, colorCharacter, true)
	if s.thought != "" {
		p.text(dst, s.thought, p.small, x+14, y-28, colorText)
	}
}

func (p *painter) drawSidebar(dst *ebiten.Image, s *Screen, viewW, w, h int) {
	vector.DrawFilledRect(dst, float32(viewW), 0, float32(w-viewW), float32(h), colorPanel, false)
	x := float64(viewW + padding)
	y := float64(padding)

	p.text(dst, p.strings.Get(game.StrUIInventory), p.face, x, y, colorAccent)
	y += lineSpacing
	for _, item := range s.inventory {
		p.text(dst, "- "+item.Name, p.small, x, y, colorText)
		y += lineSpacing - 4
	}

	y += lineSpacing
	p.text(dst, p.strings.Get(game.StrUIQuests), p.face, x, y, colorAccent)
	y += lineSpacing
	for _, q := range s.quests {
		clr := colorText
		if q.Completed {
			clr = colorMuted
		}
		p.text(dst, q.Name, p.small, x, y, clr)
		y += lineSpacing - 4
		for _, step := range q.Progress {
			p.text(dst, "  * "+step, p.small, x, y, colorMuted)
			y += lineSpacing - 6
		}
	}
}

func (p *painter) drawDialogue(dst *ebiten.Image, s *Screen, viewW, h int) {
	boxH := 110
	top := float64(h - boxH)
	vector.DrawFilledRect(dst, 0, float32(top), float32(viewW), float32(boxH), colorPanel, false)
	p.text(dst, s.line.Speaker, p.face, padding, top+padding, colorAccent)
	y := top + padding + lineSpacing + 4
	for _, l := range utils.WrapFace(s.lineText, p.face, float64(viewW-padding*2)) {
		p.text(dst, l, p.face, padding, y, colorText)
		y += lineSpacing
	}
}

func (p *painter) drawPuzzle(dst *ebiten.Image, s *Screen, viewW, h int) {
	v := s.puzzleView
	x, y := float64(viewW)/6, float64(h)/5
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(viewW)*2/3, float32(h)*3/5, colorPanel, false)
	x += padding
	y += padding

	p.text(dst, v.Title, p.face, x, y, colorAccent)
	y += lineSpacing * 1.5
	p.text(dst, v.Prompt, p.small, x, y, colorText)
	y += lineSpacing * 1.5

	if v.Continuous {
		p.text(dst, p.strings.Format(game.StrUITuner, v.Value, v.Signal*100), p.face, x, y, colorText)
		y += lineSpacing
		p.text(dst, p.strings.Get(game.StrUITunerHelp), p.small, x, y, colorMuted)
	} else {
		p.text(dst, "> "+s.puzzleInput+"_", p.face, x, y, colorText)
		if v.Remaining >= 0 {
			y += lineSpacing
			p.text(dst, p.strings.Format(game.StrUIAttemptsLeft, v.Remaining), p.small, x, y, colorMuted)
		}
	}
	y += lineSpacing * 1.5
	if v.Message != "" {
		p.text(dst, v.Message, p.small, x, y, colorAccent)
		y += lineSpacing
	}
	if v.HintVisible && v.Hint != "" {
		p.text(dst, p.strings.Format(game.StrUIHint, v.Hint), p.small, x, y, colorMuted)
	}
}

func (p *painter) drawPanel(dst *ebiten.Image, s *Screen, viewW, h int) {
	panel := s.panel
	x, y := float64(viewW)/8, float64(h)/8
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(viewW)*3/4, float32(h)*3/4, colorPanel, false)
	x += padding
	y += padding

	p.text(dst, panel.Title, p.face, x, y, colorAccent)
	y += lineSpacing * 1.5
	maxW := float64(viewW)*3/4 - padding*2
	if panel.Body != "" {
		for _, l := range utils.WrapFace(panel.Body, p.small, maxW) {
			p.text(dst, l, p.small, x, y, colorText)
			y += lineSpacing - 4
		}
	}
	for _, l := range panel.Lines {
		p.text(dst, l, p.small, x, y, colorText)
		y += lineSpacing - 4
	}
	p.text(dst, p.strings.Get(game.StrUICloseHelp), p.small, x, float64(h)*7/8-lineSpacing, colorMuted)
}

func (p *painter) drawNotifications(dst *ebiten.Image, s *Screen, viewW int) {
	y := float64(padding)
	for _, n := range s.notifications {
		tw, _ := text.Measure(n.Message, p.small, 0)
		x := float64(viewW) - tw - padding*2
		vector.DrawFilledRect(dst, float32(x-6), float32(y-4), float32(tw+12), lineSpacing, colorPanel, false)
		p.text(dst, n.Message, p.small, x, y, colorText)
		y += lineSpacing + 4
	}
}

func (p *painter) text(dst *ebiten.Image, s string, face *text.GoTextFace, x, y float64, clr color.Color) {
	if s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}
