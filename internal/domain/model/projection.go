package model

// StatusProjection is what the presentation layer renders for a tracked
// job: an icon name, a headline, a longer description and a progress bar
// value. The headline and progress values are user-visible contract.
type StatusProjection struct {
	Icon            string `json:"icon"`
	Headline        string `json:"headline"`
	Description     string `json:"description"`
	ProgressPercent int    `json:"progressPercent"`
}

const failedFallbackDescription = "Something went wrong while generating your model. Please try again."

// Classify maps a fetched status onto its UI projection. Pure: the same
// status always yields the same projection.
func Classify(st *GenerationStatus) StatusProjection {
	switch st.State {
	case GenerationPending:
		return StatusProjection{
			Icon:            "clock",
			Headline:        "Queued for processing...",
			Description:     "Your request is in the queue and will start shortly.",
			ProgressPercent: 10,
		}
	case GenerationRunning:
		return StatusProjection{
			Icon:            "loader",
			Headline:        "Generating 3D model...",
			Description:     "This usually takes a couple of minutes.",
			ProgressPercent: 60,
		}
	case GenerationCompleted:
		return StatusProjection{
			Icon:            "check-circle",
			Headline:        "3D model generated successfully!",
			Description:     "Your model is ready.",
			ProgressPercent: 100,
		}
	case GenerationFailed:
		desc := st.ErrorMessage
		if desc == "" {
			desc = failedFallbackDescription
		}
		return StatusProjection{
			Icon:            "x-circle",
			Headline:        "Generation failed",
			Description:     desc,
			ProgressPercent: 0,
		}
	default:
		return StatusProjection{
			Icon:            "help-circle",
			Headline:        "Unknown status",
			Description:     "The server returned an unrecognized status.",
			ProgressPercent: 0,
		}
	}
}

// ClassifyLoading is the transient projection shown before the first
// fetch has settled. Not a persisted status.
func ClassifyLoading() StatusProjection {
	return StatusProjection{
		Icon:            "loader",
		Headline:        "Loading status...",
		Description:     "Fetching the latest status.",
		ProgressPercent: 0,
	}
}

// ClassifyError is the transient projection shown when the tracker could
// not reach the backend. The underlying cause stays in the logs; the
// visitor only gets a generic message.
func ClassifyError() StatusProjection {
	return StatusProjection{
		Icon:            "alert-triangle",
		Headline:        "Error loading status",
		Description:     "We could not load the status. Please refresh and try again.",
		ProgressPercent: 0,
	}
}
