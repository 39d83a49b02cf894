package api

// MatmulRequest is the body of POST /v1/matmuls: a full job description.
type MatmulRequest struct {
	Width    int  `json:"width"`
	Lanes    int  `json:"lanes"`
	Hidden   int  `json:"hidden"`
	Patches  int  `json:"patches"`
	WideBias bool `json:"wide_bias"`

	Input   []int32 `json:"input"`
	Weights []int32 `json:"weights"`
	Bias    []int32 `json:"bias"`
}

// MatmulResponse is the stored record of a completed computation.
type MatmulResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	Status    string `json:"status"`

	Width   int `json:"width"`
	Lanes   int `json:"lanes"`
	Hidden  int `json:"hidden"`
	Patches int `json:"patches"`

	Output   []int32 `json:"output"`
	Elements uint64  `json:"elements"`
	Ticks    uint64  `json:"ticks"`
}

// ResponseError is the error envelope returned by every handler.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
