package request

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Mode    string `json:"mode"`
	Stepped bool   `json:"stepped,omitempty"`
}

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SelectRequest is the request body for clicking a cell
type SelectRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SwapRequest is the request body for swapping two cells
type SwapRequest struct {
	A *Position `json:"a"`
	B *Position `json:"b"`
}
