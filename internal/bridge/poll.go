package bridge

import (
	"encoding/json"
	"log"

	"github.com/decker502/casefile/pkg/game"
)

// 入站事件类型
const (
	EvClick    = "click"
	EvInteract = "interact"
	EvArrived  = "arrived"
	EvAdvance  = "advance"
	EvSubmit   = "submit"
	EvAdjust   = "adjust"
	EvSetValue = "setValue"
	EvHint     = "hint"
	EvCancel   = "cancel"
	EvSave     = "save"
	EvLoad     = "load"
	EvUseItem  = "useItem"
	EvFeature  = "feature"
)

type clickEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type idEvent struct {
	ID string `json:"id"`
}

type arrivedEvent struct {
	Seq uint64 `json:"seq"`
}

type submitEvent struct {
	Text string `json:"text"`
}

type valueEvent struct {
	Delta float64 `json:"delta"`
	Value float64 `json:"value"`
}

type featureEvent struct {
	Module string            `json:"module"`
	Config map[string]string `json:"config"`
}

// Poll 在引擎线程上处理所有已排队的入站事件，不阻塞
// 返回处理的事件数
func (h *Hub) Poll(e *game.Engine) int {
	n := 0
	for {
		select {
		case ev := <-h.events:
			h.dispatch(e, ev)
			n++
		default:
			return n
		}
	}
}

// Enqueue 直接放入一个入站事件（测试与本地输入使用）
func (h *Hub) Enqueue(ev Event) bool {
	select {
	case h.events <- ev:
		return true
	default:
		return false
	}
}

func (h *Hub) dispatch(e *game.Engine, ev Event) {
	switch ev.Type {
	case EvClick:
		var c clickEvent
		if decode(ev, &c) {
			e.HandleClick(game.Point{X: c.X, Y: c.Y})
		}
	case EvInteract:
		var c idEvent
		if decode(ev, &c) {
			e.Hotspots().Interact(c.ID)
		}
	case EvArrived:
		var a arrivedEvent
		if len(ev.Payload) > 0 && !decode(ev, &a) {
			return
		}
		// seq 为 0 表示客户端不跟踪序号
		if a.Seq != 0 && a.Seq != h.walking {
			return
		}
		fn := h.arrival
		h.arrival = nil
		if fn != nil {
			fn()
		}
	case EvAdvance:
		e.AdvanceDialogue()
	case EvSubmit:
		var s submitEvent
		if decode(ev, &s) {
			if _, err := e.SubmitPuzzle(s.Text); err != nil {
				log.Printf("[Bridge] submit: %v", err)
			}
		}
	case EvAdjust:
		var v valueEvent
		if decode(ev, &v) {
			if err := e.Puzzles().Adjust(v.Delta); err != nil {
				log.Printf("[Bridge] adjust: %v", err)
			}
		}
	case EvSetValue:
		var v valueEvent
		if decode(ev, &v) {
			if err := e.Puzzles().SetValue(v.Value); err != nil {
				log.Printf("[Bridge] setValue: %v", err)
			}
		}
	case EvHint:
		e.Puzzles().ToggleHint()
	case EvCancel:
		e.Puzzles().Cancel()
	case EvSave:
		if err := e.Save(); err != nil {
			log.Printf("[Bridge] save: %v", err)
		}
	case EvLoad:
		if err := e.Load(); err != nil {
			log.Printf("[Bridge] load: %v", err)
		}
	case EvUseItem:
		var c idEvent
		if decode(ev, &c) {
			e.UseItem(c.ID)
		}
	case EvFeature:
		var f featureEvent
		if decode(ev, &f) {
			if err := e.ShowFeature(f.Module, f.Config); err != nil {
				log.Printf("[Bridge] feature %s: %v", f.Module, err)
			}
		}
	default:
		log.Printf("[Bridge] Warning: 未知事件类型 %q", ev.Type)
	}
}

func decode(ev Event, v any) bool {
	if err := json.Unmarshal(ev.Payload, v); err != nil {
		log.Printf("[Bridge] Warning: %s 载荷无效: %v", ev.Type, err)
		return false
	}
	return true
}
