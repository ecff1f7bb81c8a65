// Package export renders planned routes and logged runs into the map
// formats skiers load into other tools.
package export

import (
	"fmt"
	"io"

	kml "github.com/twpayne/go-kml"

	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// RouteKML writes a KML document holding one placemark per placed waypoint
// and a line through them in route order.
func RouteKML(w io.Writer, name string, wps []waypoint.Waypoint) error {
	var (
		placemarks []kml.Element
		line       []kml.Coordinate
	)
	for _, wp := range wps {
		if wp.Unplaced {
			continue
		}
		c := kml.Coordinate{Lon: wp.Lon, Lat: wp.Lat, Alt: wp.AltitudeM}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(wp.Name),
			kml.Description(fmt.Sprintf("%s, %.0f m", wp.Category, wp.AltitudeM)),
			kml.Point(kml.Coordinates(c)),
		))
		line = append(line, c)
	}

	children := []kml.Element{kml.Name(name)}
	if len(line) >= 2 {
		children = append(children, kml.Placemark(
			kml.Name(name),
			kml.LineString(kml.Coordinates(line...)),
		))
	}
	children = append(children, placemarks...)

	return kml.KML(kml.Document(children...)).WriteIndent(w, "", "  ")
}
