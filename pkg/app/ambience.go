package app

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"

	"github.com/decker502/casefile/pkg/embedded"
	"github.com/decker502/casefile/pkg/game"
)

// SampleRate 音频上下文采样率
const SampleRate = 48000

// AmbiencePlayer 场景环境音播放器
//
// 同一时间只播放一条循环环境音，音量取自玩家设置。
// 引用以 data/ 开头时从嵌入资源读取，否则从磁盘读取。
type AmbiencePlayer struct {
	context    *audio.Context
	settings   *game.GameSettings
	players    map[string]*audio.Player
	current    *audio.Player
	currentRef string
}

// NewAmbiencePlayer 创建环境音播放器
//
// 参数：
//   - ctx: ebiten 音频上下文（进程内只能创建一个）
//   - settings: 玩家设置（可为 nil，使用默认音量）
func NewAmbiencePlayer(ctx *audio.Context, settings *game.GameSettings) *AmbiencePlayer {
	return &AmbiencePlayer{
		context:  ctx,
		settings: settings,
		players:  make(map[string]*audio.Player),
	}
}

// Play 循环播放环境音，已在播放同一条时不重复播放
func (a *AmbiencePlayer) Play(ref string) {
	if a.currentRef == ref && a.current != nil && a.current.IsPlaying() {
		return
	}
	a.Stop()

	player, err := a.player(ref)
	if err != nil {
		log.Printf("[Ambience] Warning: %v", err)
		return
	}
	player.SetVolume(a.volume())
	if err := player.Rewind(); err != nil {
		log.Printf("[Ambience] Warning: Failed to rewind %s: %v", ref, err)
	}
	player.Play()
	a.current = player
	a.currentRef = ref
	log.Printf("[Ambience] Playing: %s (volume: %.2f)", ref, a.volume())
}

// Stop 停止当前环境音
func (a *AmbiencePlayer) Stop() {
	if a.current != nil {
		a.current.Pause()
		a.current = nil
		a.currentRef = ""
	}
}

// ApplyVolume 把设置中的音量应用到当前播放
func (a *AmbiencePlayer) ApplyVolume() {
	if a.current != nil {
		a.current.SetVolume(a.volume())
	}
}

func (a *AmbiencePlayer) volume() float64 {
	if a.settings != nil {
		return a.settings.AmbienceVolume
	}
	return game.DefaultSettings().AmbienceVolume
}

func (a *AmbiencePlayer) player(ref string) (*audio.Player, error) {
	if p, ok := a.players[ref]; ok {
		return p, nil
	}
	data, err := readAsset(ref)
	if err != nil {
		return nil, err
	}
	stream, err := decodeLoop(ref, data)
	if err != nil {
		return nil, err
	}
	p, err := a.context.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", ref, err)
	}
	a.players[ref] = p
	return p, nil
}

// decodeLoop 按扩展名解码并包装为无限循环流
// 支持 .mp3 和 .ogg
func decodeLoop(ref string, data []byte) (io.Reader, error) {
	reader := bytes.NewReader(data)

	var stream interface {
		io.ReadSeeker
		Length() int64
	}
	switch ext := strings.ToLower(filepath.Ext(ref)); ext {
	case ".mp3":
		s, err := mp3.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", ref, err)
		}
		stream = s
	case ".ogg":
		s, err := vorbis.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", ref, err)
		}
		stream = s
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg)", ext)
	}
	return audio.NewInfiniteLoop(stream, stream.Length()), nil
}

// readAsset 读取资源文件（嵌入资源或磁盘）
func readAsset(ref string) ([]byte, error) {
	if strings.HasPrefix(filepath.ToSlash(ref), "data/") {
		return embedded.ReadFile(ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", ref, err)
	}
	return data, nil
}

var _ game.Ambience = (*AmbiencePlayer)(nil)
