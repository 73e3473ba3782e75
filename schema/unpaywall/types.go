// Package unpaywall contains the DOI object of the Unpaywall v2 API, see
// https://unpaywall.org/data-format.
package unpaywall

// Work is the response for /v2/{doi}, reduced to the open access status.
type Work struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
}

// AccessRights maps the open access status to a label, e.g. "Gold Open
// Access". Works that are not open access are "Limited Access".
func (w *Work) AccessRights() string {
	if !w.IsOA {
		return "Limited Access"
	}
	switch w.OAStatus {
	case "gold":
		return "Gold Open Access"
	case "green":
		return "Green Open Access"
	case "hybrid":
		return "Hybrid Open Access"
	case "bronze":
		return "Bronze Open Access"
	default:
		return "Open Access"
	}
}
