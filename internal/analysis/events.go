package analysis

import "encoding/json"

// Event is one frame of the progress stream. The same JSON shape is sent
// over SSE and over the websocket channel.
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Details string      `json:"details,omitempty"`
	Data    *Progress   `json:"data,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Progress carries per-step counters for the browser progress bar.
type Progress struct {
	Step    string `json:"step"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

const (
	EventLog       = "log"
	EventProgress  = "progress"
	EventResult    = "result"
	EventError     = "error"
	EventStreamEnd = "stream_end"
)

// Emitter receives events as the run advances. Implementations must be safe
// to call from the run goroutine.
type Emitter func(Event)

func LogEvent(message string) Event {
	return Event{Type: EventLog, Message: message}
}

func ProgressEvent(step string, current, total int, message string) Event {
	return Event{Type: EventProgress, Data: &Progress{
		Step:    step,
		Current: current,
		Total:   total,
		Message: message,
	}}
}

func ResultEvent(payload interface{}) Event {
	return Event{Type: EventResult, Payload: payload}
}

func ErrorEvent(message, details string) Event {
	return Event{Type: EventError, Message: message, Details: details}
}

func StreamEndEvent() Event {
	return Event{Type: EventStreamEnd, Message: "Stream ended."}
}

// SSE renders the event as a server-sent-events frame.
func (e Event) SSE() string {
	data, err := json.Marshal(e)
	if err != nil {
		// Event fields are all marshalable types; this cannot fail for
		// events built through the constructors above.
		return "data: {\"type\":\"error\",\"message\":\"event encoding failed\"}\n\n"
	}
	return "data: " + string(data) + "\n\n"
}
