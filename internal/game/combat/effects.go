package combat

import "github.com/cory-johannsen/battlecore/internal/game/stat"

// EffectKind names a side effect a presentation layer replays.
type EffectKind int

const (
	EffectMessage EffectKind = iota
	EffectMoveUsed
	EffectDamage
	EffectHeal
	EffectStatStage
	EffectStatus
	EffectFaint
	EffectSegmentCleared
	EffectTagAdded
	EffectWeather
	EffectSwitchIn
)

// String returns the effect kind label.
func (k EffectKind) String() string {
	switch k {
	case EffectMessage:
		return "message"
	case EffectMoveUsed:
		return "move_used"
	case EffectDamage:
		return "damage"
	case EffectHeal:
		return "heal"
	case EffectStatStage:
		return "stat_stage"
	case EffectStatus:
		return "status"
	case EffectFaint:
		return "faint"
	case EffectSegmentCleared:
		return "segment_cleared"
	case EffectTagAdded:
		return "tag_added"
	case EffectWeather:
		return "weather"
	case EffectSwitchIn:
		return "switch_in"
	default:
		return "unknown"
	}
}

// Message keys queued for the presentation layer.
const (
	MsgNoEffect         = "hit.no_effect"
	MsgImmune           = "hit.immune"
	MsgCritical         = "hit.critical"
	MsgSuperEffective   = "hit.super_effective"
	MsgNotVeryEffective = "hit.not_very_effective"
	MsgOneHitKO         = "hit.one_hit_ko"
	MsgMiss             = "hit.miss"
	MsgEndured          = "hit.endured"
	MsgStrongWinds      = "weather.strong_winds"
	MsgMoveFailed       = "move.failed"
	MsgStruggle         = "move.struggle"
	MsgAsleep           = "status.asleep"
	MsgWokeUp           = "status.woke_up"
	MsgFrozen           = "status.frozen"
	MsgThawed           = "status.thawed"
	MsgFullyParalyzed   = "status.fully_paralyzed"
	MsgStatUnchanged    = "stat.unchanged"
)

// Effect is one side-effect descriptor. Only the fields meaningful for Kind are set.
type Effect struct {
	Kind     EffectKind
	SourceID string
	TargetID string
	MoveID   string
	Key      string
	Amount   int
	Stat     stat.Stat
	Result   Result
	Critical bool
}

// Log accumulates the effects of one resolution step in order.
type Log struct {
	Effects []Effect
}

func (l *Log) add(e Effect) {
	if l == nil {
		return
	}
	l.Effects = append(l.Effects, e)
}

func (l *Log) message(key, targetID string) {
	l.add(Effect{Kind: EffectMessage, Key: key, TargetID: targetID})
}

// Messages returns the message keys in queue order.
func (l *Log) Messages() []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, e := range l.Effects {
		if e.Kind == EffectMessage {
			out = append(out, e.Key)
		}
	}
	return out
}

// Since returns the effects appended after mark.
func (l *Log) Since(mark int) []Effect {
	if l == nil || mark >= len(l.Effects) {
		return nil
	}
	return append([]Effect(nil), l.Effects[mark:]...)
}

// Len returns the number of recorded effects.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Effects)
}
