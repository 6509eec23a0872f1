// Package route provides the immutable GIS route the vehicle travels on:
// ordered path nodes with cumulative distances, elevations, gradients, legal
// speed limits and time zones, plus the monotonic index resolution the
// simulation engine uses to locate the vehicle at every tick.
package route

import (
	"fmt"
	"math"
)

// earthRadiusM is the mean Earth radius in metres.
const earthRadiusM = 6371009.0

// Node is a single point on the route path.
type Node struct {
	Latitude  float64
	Longitude float64

	// CumulativeDistanceM is the distance from the route origin in metres.
	CumulativeDistanceM float64
	// ElevationM is the elevation above sea level in metres.
	ElevationM float64
	// Gradient is the rise over run from this node to the next.
	Gradient float64
	// SpeedLimitKmh is the legal speed limit on the segment starting at this node.
	SpeedLimitKmh float64
	// TimeZoneOffset is the local UTC offset at this node in seconds.
	TimeZoneOffset int
}

// Route is an ordered sequence of path nodes. It is immutable once built and
// is shared by reference across concurrent simulation runs.
type Route struct {
	nodes        []Node
	bearings     []float64
	limitProfile []float64
}

// New validates the node sequence and builds a Route. Cumulative distances
// must start at zero and be non-decreasing, strictly increasing between
// distinct nodes.
func New(nodes []Node) (*Route, error) {
	if len(nodes) < 2 {
		return nil, fmt.Errorf("route needs at least two nodes, got %d", len(nodes))
	}
	if nodes[0].CumulativeDistanceM != 0 {
		return nil, fmt.Errorf("route must start at cumulative distance 0, got %f", nodes[0].CumulativeDistanceM)
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].CumulativeDistanceM < nodes[i-1].CumulativeDistanceM {
			return nil, fmt.Errorf("cumulative distance decreases at node %d", i)
		}
	}
	for i, n := range nodes {
		if n.SpeedLimitKmh < 0 {
			return nil, fmt.Errorf("node %d: speed limit cannot be negative", i)
		}
	}

	held := make([]Node, len(nodes))
	copy(held, nodes)
	r := &Route{nodes: held}
	r.bearings = calculateBearings(held)
	r.limitProfile = buildLimitProfile(held)
	return r, nil
}

// Len returns the number of nodes.
func (r *Route) Len() int {
	return len(r.nodes)
}

// LengthM returns the total route length in metres.
func (r *Route) LengthM() float64 {
	return r.nodes[len(r.nodes)-1].CumulativeDistanceM
}

// Node returns the node at index i.
func (r *Route) Node(i int) Node {
	return r.nodes[i]
}

// Gradient returns the gradient at node index i.
func (r *Route) Gradient(i int) float64 {
	return r.nodes[i].Gradient
}

// Elevation returns the elevation in metres at node index i.
func (r *Route) Elevation(i int) float64 {
	return r.nodes[i].ElevationM
}

// TimeZoneOffset returns the local UTC offset in seconds at node index i.
func (r *Route) TimeZoneOffset(i int) int {
	return r.nodes[i].TimeZoneOffset
}

// Bearing returns the forward azimuth of the vehicle at node index i, in
// degrees clockwise from north.
func (r *Route) Bearing(i int) float64 {
	return r.bearings[i]
}

// SpeedLimitProfile returns the legal speed limit sampled at every whole
// metre of the route, indexable by floor(cumulative distance). The returned
// slice is owned by the route and must not be mutated.
func (r *Route) SpeedLimitProfile() []float64 {
	return r.limitProfile
}

// buildLimitProfile samples segment speed limits once per metre so the
// schedule constraint pass can index limits directly by position.
func buildLimitProfile(nodes []Node) []float64 {
	length := int(math.Floor(nodes[len(nodes)-1].CumulativeDistanceM)) + 1
	profile := make([]float64, length)
	seg := 0
	for m := 0; m < length; m++ {
		for seg < len(nodes)-1 && float64(m) >= nodes[seg+1].CumulativeDistanceM {
			seg++
		}
		profile[m] = nodes[seg].SpeedLimitKmh
	}
	return profile
}

// calculateBearings computes the forward azimuth at every node from its
// position and the next node's position. The final node repeats the previous
// bearing so the array lines up 1:1 with nodes.
func calculateBearings(nodes []Node) []float64 {
	bearings := make([]float64, len(nodes))
	for i := 0; i < len(nodes)-1; i++ {
		lat1 := nodes[i].Latitude * math.Pi / 180
		lat2 := nodes[i+1].Latitude * math.Pi / 180
		dLon := (nodes[i+1].Longitude - nodes[i].Longitude) * math.Pi / 180

		y := math.Sin(dLon) * math.Cos(lat2)
		x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
		bearing := math.Atan2(y, x) * 180 / math.Pi
		bearings[i] = math.Mod(bearing+360, 360)
	}
	if len(nodes) > 1 {
		bearings[len(nodes)-1] = bearings[len(nodes)-2]
	}
	return bearings
}

// HaversineM returns the great-circle distance in metres between two
// coordinates. Adjacent route nodes are spaced tightly enough that segments
// are treated as straight lines of this length.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

// GradientsFromElevations derives per-node gradients from elevation deltas
// over segment lengths, for providers that supply raw elevation data only.
// The last gradient repeats the previous one.
func GradientsFromElevations(nodes []Node) []float64 {
	gradients := make([]float64, len(nodes))
	for i := 0; i < len(nodes)-1; i++ {
		run := nodes[i+1].CumulativeDistanceM - nodes[i].CumulativeDistanceM
		if run > 0 {
			gradients[i] = (nodes[i+1].ElevationM - nodes[i].ElevationM) / run
		}
	}
	if len(nodes) > 1 {
		gradients[len(nodes)-1] = gradients[len(nodes)-2]
	}
	return gradients
}

// IndexResolver maps a non-decreasing sequence of cumulative distances to
// the closest route node index. Because queries are monotonic, the resolver
// keeps a moving pointer and the total cost over a whole tick loop is O(n),
// not O(n) per tick.
type IndexResolver struct {
	nodes []Node
	idx   int
}

// Resolver returns a fresh IndexResolver positioned at the route origin.
// Each simulation run owns its own resolver.
func (r *Route) Resolver() *IndexResolver {
	return &IndexResolver{nodes: r.nodes}
}

// Next returns the node index for the given cumulative distance. Distances
// passed to successive calls must be non-decreasing.
func (ir *IndexResolver) Next(distanceM float64) int {
	for ir.idx < len(ir.nodes)-1 && distanceM > ir.nodes[ir.idx+1].CumulativeDistanceM {
		ir.idx++
	}
	return ir.idx
}
