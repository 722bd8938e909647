// Package engine provides the editing session at the heart of wordsmith.
//
// A Session exclusively owns one document buffer, the suggestion set computed
// for it and the caret. It combines the span, buffer, cursor, suggestion,
// reconcile and projector packages into a single thread-safe API.
//
// # Versions
//
// Every mutation of the buffer produces a new version, exactly one greater
// than the last. Suggestion sets are tagged with the version they describe,
// and nothing is ever applied across versions:
//
//   - Publish discards a batch computed for any version but the current one
//   - ApplySuggestion refuses a request made against an old version
//   - Edit translates the live set forward instead of discarding it
//   - Reset replaces the content and discards the set
//
// # Thread Safety
//
// All Session operations are thread-safe. Reads take a shared lock and
// writes are serialized; a write replaces the whole state in one step, so a
// reader never sees a buffer paired with a set from another version.
//
// # Basic Usage
//
//	s := engine.New(engine.WithContent("Teh cat sat"))
//
//	// An analyzer response for version 1
//	res, err := s.Publish(1, []suggestion.Raw{
//	    {Type: "spelling", Message: "typo", Replacement: "The", Start: 0, End: 3},
//	})
//
//	snap := s.Snapshot()
//	_, err = s.ApplySuggestion(snap.Suggestions[0].ID, snap.Version)
//	// s.Text() == "The cat sat", s.Version() == 2
//
// # Rendering
//
// Project returns the segmented render view of the current version:
//
//	for seg := range s.Project().Segments() {
//	    if seg.Decoration != nil {
//	        // underline seg.Text by seg.Decoration.Kind
//	    }
//	}
package engine
