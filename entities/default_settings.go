package entities

type DefaultSettings struct {
	MemberID string  `json:"member_id"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Scale    float64 `json:"scale"`
	Crop     bool    `json:"crop"`
}
