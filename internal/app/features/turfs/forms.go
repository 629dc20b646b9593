// internal/app/features/turfs/forms.go
//
// Boundary parsing for the turf feature: multipart form fields and listing
// query parameters are validated and converted exactly once, into typed
// values. Nothing downstream sees raw strings.

package turfs

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	turfqueries "github.com/fieldworks/turfhub/internal/app/store/queries/turfqueries"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/inputval"
	"github.com/fieldworks/turfhub/internal/app/system/paging"
	"github.com/fieldworks/turfhub/internal/app/system/sanitize"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

var validDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

type turfInput struct {
	OrganizationID primitive.ObjectID
	Name           string
	Sports         []string
	BasePrice      float64
	HasBasePrice   bool
	TeamSize       int
	OperatingHours []models.OperatingWindow
}

// parseTurfForm reads the turf fields from an already-parsed multipart form.
// With requireCore set (create), organization_id, name, and base_price are
// mandatory; otherwise (update) absent fields stay zero.
func parseTurfForm(r *http.Request, requireCore bool) (turfInput, error) {
	var in turfInput

	if raw := r.FormValue("organization_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return in, apperr.Validation("organization_id is not a valid id")
		}
		in.OrganizationID = id
	} else if requireCore {
		return in, apperr.Validation("organization_id is required")
	}

	in.Name = sanitize.Text(r.FormValue("name"))
	if requireCore && in.Name == "" {
		return in, apperr.Validation("name is required")
	}

	if raw := r.FormValue("sports"); raw != "" {
		sports, err := inputval.StringList("sports", raw)
		if err != nil {
			return in, apperr.Validation("%v", err)
		}
		in.Sports = sanitize.List(sports)
	}

	if raw := r.FormValue("base_price"); raw != "" {
		price, err := inputval.Float("base_price", raw)
		if err != nil {
			return in, apperr.Validation("%v", err)
		}
		if *price < 0 {
			return in, apperr.Validation("base_price cannot be negative")
		}
		in.BasePrice = *price
		in.HasBasePrice = true
	} else if requireCore {
		return in, apperr.Validation("base_price is required")
	}

	if raw := r.FormValue("team_size"); raw != "" {
		size, err := inputval.Int("team_size", raw)
		if err != nil {
			return in, apperr.Validation("%v", err)
		}
		if *size < 1 {
			return in, apperr.Validation("team_size must be at least 1")
		}
		in.TeamSize = *size
	}

	if raw := r.FormValue("operating_hours"); raw != "" {
		var windows []models.OperatingWindow
		if err := inputval.JSONObject("operating_hours", raw, &windows); err != nil {
			return in, apperr.Validation("%v", err)
		}
		for i, wdw := range windows {
			day := strings.ToLower(strings.TrimSpace(wdw.Day))
			if !validDays[day] {
				return in, apperr.Validation("operating_hours[%d].day %q is not a weekday", i, wdw.Day)
			}
			if err := inputval.ClockTime("open", wdw.Open); err != nil {
				return in, apperr.Validation("operating_hours[%d]: %v", i, err)
			}
			if err := inputval.ClockTime("close", wdw.Close); err != nil {
				return in, apperr.Validation("operating_hours[%d]: %v", i, err)
			}
			if wdw.Open >= wdw.Close {
				return in, apperr.Validation("operating_hours[%d] must open before it closes", i)
			}
			windows[i].Day = day
		}
		in.OperatingHours = windows
	}

	return in, nil
}

// parseFilter converts the listing query string into FilterOptions. Every
// malformed value is rejected here, naming the offending parameter.
func parseFilter(r *http.Request, p paging.Params) (turfqueries.FilterOptions, error) {
	q := r.URL.Query()
	opts := turfqueries.FilterOptions{
		Skip:  p.Skip(),
		Limit: p.Limit64(),
	}

	var err error
	if opts.MinPrice, err = inputval.Float("minPrice", q.Get("minPrice")); err != nil {
		return opts, apperr.Validation("%v", err)
	}
	if opts.MaxPrice, err = inputval.Float("maxPrice", q.Get("maxPrice")); err != nil {
		return opts, apperr.Validation("%v", err)
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return opts, apperr.Validation("minPrice cannot exceed maxPrice")
	}
	if opts.TeamSize, err = inputval.Int("teamSize", q.Get("teamSize")); err != nil {
		return opts, apperr.Validation("%v", err)
	}

	if opts.Sports, err = inputval.StringList("sports", q.Get("sports")); err != nil {
		return opts, apperr.Validation("%v", err)
	}
	if opts.Facilities, err = inputval.StringList("facilities", q.Get("facilities")); err != nil {
		return opts, apperr.Validation("%v", err)
	}

	day := strings.ToLower(strings.TrimSpace(q.Get("day")))
	at := q.Get("time")
	if (day == "") != (at == "") {
		return opts, apperr.Validation("day and time must be supplied together")
	}
	if day != "" {
		if !validDays[day] {
			return opts, apperr.Validation("day %q is not a weekday", q.Get("day"))
		}
		if err := inputval.ClockTime("time", at); err != nil {
			return opts, apperr.Validation("%v", err)
		}
		opts.Day = day
		opts.Time = at
	}

	lng, err := inputval.Float("lng", q.Get("lng"))
	if err != nil {
		return opts, apperr.Validation("%v", err)
	}
	lat, err := inputval.Float("lat", q.Get("lat"))
	if err != nil {
		return opts, apperr.Validation("%v", err)
	}
	radius, err := inputval.Float("radius", q.Get("radius"))
	if err != nil {
		return opts, apperr.Validation("%v", err)
	}
	geoGiven := 0
	for _, v := range []*float64{lng, lat, radius} {
		if v != nil {
			geoGiven++
		}
	}
	if geoGiven > 0 && geoGiven < 3 {
		return opts, apperr.Validation("lng, lat, and radius must be supplied together")
	}
	if geoGiven == 3 {
		if *lng < -180 || *lng > 180 || *lat < -90 || *lat > 90 {
			return opts, apperr.Validation("lng/lat out of range")
		}
		if *radius <= 0 {
			return opts, apperr.Validation("radius must be positive")
		}
		opts.Lng, opts.Lat, opts.RadiusMeters = lng, lat, radius
	}

	return opts, nil
}
