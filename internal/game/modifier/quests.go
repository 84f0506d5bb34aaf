package modifier

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/quest"
)

// AddQuest starts tracking def.
//
// Postcondition: Returns false if def is already tracked.
func (r *Registry) AddQuest(def *quest.Def) bool {
	return r.Add(&Modifier{Kind: Quest, Progress: quest.NewProgress(def)}, Reject, false, nil)
}

// Quests returns the progress of every tracked quest.
func (r *Registry) Quests() []*quest.Progress {
	var out []*quest.Progress
	for _, m := range r.OfKind(Quest) {
		out = append(out, m.Progress)
	}
	return out
}

// ObserveQuest feeds e to every tracked quest. A quest that finishes is
// removed unless its definition keeps a terminal marker. Dispatch errors are
// collected and joined; remaining quests still observe the event.
func (r *Registry) ObserveQuest(e quest.Event, d quest.RewardDispatcher) error {
	var errs []error
	var finished []*Modifier
	for _, m := range r.OfKind(Quest) {
		out, err := m.Progress.Observe(e, d)
		if err != nil {
			errs = append(errs, err)
		}
		if out.Finished {
			r.logger.Info("quest completed", zap.String("quest", m.Progress.Def.ID))
			if !m.Progress.Def.Marker {
				finished = append(finished, m)
			}
		}
	}
	for _, m := range finished {
		r.Remove(m)
	}
	return errors.Join(errs...)
}

// QuestRunStart resets single-run quests.
func (r *Registry) QuestRunStart() {
	for _, p := range r.Quests() {
		p.OnRunStart()
	}
}

// QuestEncounterStart resets single-encounter quests.
func (r *Registry) QuestEncounterStart() {
	for _, p := range r.Quests() {
		p.OnEncounterStart()
	}
}

// QuestEncounterEnd applies reset-on-fail when the encounter was lost.
func (r *Registry) QuestEncounterEnd(failed bool) {
	for _, p := range r.Quests() {
		p.OnEncounterEnd(failed)
	}
}
