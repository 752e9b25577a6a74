package exporter

// levelLabel maps iTop priority and urgency ids to their names.
func levelLabel(id string) string {
	switch id {
	case "1":
		return "Critical"
	case "2":
		return "High"
	case "3":
		return "Medium"
	case "4":
		return "Low"
	default:
		return id
	}
}
