// Package bus is the asynchronous message channel between the page-facing
// contexts (feed tabs, settings surface) and the background counter service.
// The two sides run in separate execution contexts and share no memory; every
// exchange is a Request/Response or a one-way Push.
package bus

// Action discriminates the request variants. The set is closed: anything
// else gets the unknown-action error response.
type Action string

const (
	ActionGetDislike        Action = "getDislike"
	ActionAddDislike        Action = "addDislike"
	ActionRemoveDislike     Action = "removeDislike"
	ActionGetAllDislikes    Action = "getAllDislikes"
	ActionSetSupabaseConfig Action = "setSupabaseConfig"

	// Push-only actions, background to page context.
	ActionSyncDislikes     Action = "syncDislikes"
	ActionRefreshDislikes  Action = "refreshDislikes"
	ActionClearAllDislikes Action = "clearAllDislikes"
)

// Request is a message from a page context to the background service.
type Request struct {
	Action Action `json:"action"`
	PostID string `json:"postId,omitempty"`

	// Remote store override, for setSupabaseConfig only.
	URL string `json:"url,omitempty"`
	Key string `json:"key,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	Success  bool           `json:"success"`
	Count    int            `json:"count,omitempty"`
	Dislikes map[string]int `json:"dislikes,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Push is a one-way message from the background service to page contexts.
type Push struct {
	Action   Action         `json:"action"`
	Dislikes map[string]int `json:"dislikes,omitempty"`
}
