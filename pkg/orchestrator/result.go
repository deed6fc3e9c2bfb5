package orchestrator

// Result is the outcome of one layer's pipeline: data or an error, never both.
type Result struct {
	ID   string
	Data interface{}
	Err  error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Message is the error text reported to clients.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	if msg := r.Err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}

type Response struct {
	Data   map[string]interface{} `json:"data"`
	Errors map[string]string      `json:"errors"`
}

func NewResponse() *Response {
	return &Response{
		Data:   make(map[string]interface{}),
		Errors: make(map[string]string),
	}
}

// add records result under its id. A repeated id keeps the last outcome so an
// id is never in both maps.
func (r *Response) add(result Result) {
	if result.Failed() {
		delete(r.Data, result.ID)
		r.Errors[result.ID] = result.Message()
		return
	}
	delete(r.Errors, result.ID)
	r.Data[result.ID] = result.Data
}
