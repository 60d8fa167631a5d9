package trip

// Activity is a single itinerary entry within a trip day.
type Activity struct {
	ID       string  `json:"id"`
	Day      int     `json:"day"`
	Time     string  `json:"time"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Cost     float64 `json:"cost"`
	Notes    string  `json:"notes"`
}

type Trip struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Destination   string     `json:"destination"`
	StartDate     string     `json:"startDate"`
	EndDate       string     `json:"endDate"`
	Budget        float64    `json:"budget"`
	Spent         float64    `json:"spent"`
	Collaborators []string   `json:"collaborators"`
	Activities    []Activity `json:"activities"`
}

type CreateTripRequest struct {
	Name        string  `json:"name"`
	Destination string  `json:"destination"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Budget      float64 `json:"budget"`
}

type AddActivityRequest struct {
	Day      int     `json:"day"`
	Time     string  `json:"time"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Cost     float64 `json:"cost"`
	Notes    string  `json:"notes"`
}
