package blob

// Record kinds stored as non-protected metadata alongside envelopes.
const (
	KindRoster       = "roster"
	KindSeatingChart = "seating_chart"
)

// Student is one entry in a class roster. Every field is protected data
// and exists in plaintext only inside an active session.
type Student struct {
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// Roster is the protected student list for one class period.
type Roster struct {
	Students []Student `json:"students"`
}

// Seat assigns a student to a position in the room grid.
type Seat struct {
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Student string `json:"student"`
}

// SeatingChart is a protected seat assignment layout.
type SeatingChart struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Seats   []Seat `json:"seats"`
}
