// Package submission drives the per-admin "add song" dialog. The state
// machine is transport-free: handlers in the app layer translate Telegram
// updates into Put* calls and render the returned outcomes.
package submission

// Step tags the input the dialog currently waits for. Steps advance
// strictly in order; there are no back-transitions and no skipping.
type Step string

const (
	// StepCollectingAudio waits for the song audio file.
	StepCollectingAudio Step = "collecting_audio"
	// StepCollectingPhoto waits for the cover image.
	StepCollectingPhoto Step = "collecting_photo"
	// StepCollectingName waits for the song name.
	StepCollectingName Step = "collecting_name"
	// StepCollectingCategory waits for the category text.
	StepCollectingCategory Step = "collecting_category"
	// StepCollectingText waits for the lyrics; receiving them finalizes.
	StepCollectingText Step = "collecting_text"
)

// Session holds the fields collected so far for one admin's dialog.
// Fields are populated strictly in step order and are only read once the
// guarding step has passed.
type Session struct {
	Step        Step
	AudioFileID string
	PhotoFileID string
	Name        string
	Category    string
}
