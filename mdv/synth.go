// mdv/synth.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mdv

import (
	gomath "math"
	"strings"
	"time"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/util"
)

// SynthOptions describes a synthetic volume; zero-valued fields take
// defaults.
type SynthOptions struct {
	Scan          string // ScanPPI or ScanRHI
	RadarName     string
	Location      math.Point2LL
	AltitudeKm    float32
	Time          time.Time
	Angles        []float32 // per sweep: elevation for PPIs, azimuth for RHIs
	NumRays       int
	NumGates      int
	GateSpacingKm float32
	StartRangeKm  float32
	UnambigVelMps float32
	Moments       []moment.Moment
}

// MissingValue is the value stored for missing cells in synthetic
// filtered fields.
const MissingValue = -9999

func (o SynthOptions) withDefaults() SynthOptions {
	if o.Scan == "" {
		o.Scan = ScanPPI
	}
	if o.RadarName == "" {
		o.RadarName = "SYNTH"
	}
	if o.Location == (math.Point2LL{}) {
		o.Location = math.Point2LL{131.0440, -12.2491}
	}
	if o.Time.IsZero() {
		o.Time = time.Date(2006, 1, 20, 10, 0, 0, 0, time.UTC)
	}
	if len(o.Angles) == 0 {
		if o.Scan == ScanRHI {
			o.Angles = []float32{37, 127}
		} else {
			o.Angles = []float32{0.5, 1.3, 2.4, 3.5}
		}
	}
	if o.NumRays == 0 {
		o.NumRays = util.Select(o.Scan == ScanRHI, 90, 360)
	}
	if o.NumGates == 0 {
		o.NumGates = 200
	}
	if o.GateSpacingKm == 0 {
		o.GateSpacingKm = 0.5
	}
	if o.UnambigVelMps == 0 {
		o.UnambigVelMps = 25
	}
	if len(o.Moments) == 0 {
		o.Moments = moment.All()
	}
	return o
}

var synthUnits = map[string]string{
	"DBMHC": "dBm",
	"DBMVC": "dBm",
	"DBZ":   "dBZ",
	"DBZVC": "dBZ",
	"VEL":   "m/s",
	"WIDTH": "m/s",
	"ZDR":   "dB",
	"RHOHV": "none",
	"PHIDP": "deg",
	"KDP":   "deg/km",
	"NCP":   "none",
}

// Synthesize returns a volume holding an analytic storm cell 50 km
// north-northeast of the radar, embedded in a uniform wind, sampled with
// the given scan geometry. Filtered moments have cells with low
// normalized coherent power marked as missing.
func Synthesize(opts SynthOptions) *Volume {
	o := opts.withDefaults()
	rhi := o.Scan == ScanRHI

	v := &Volume{
		RadarInfo: RadarInfo{
			RadarID:           1,
			RadarName:         o.RadarName,
			LatitudeDeg:       o.Location.Latitude(),
			LongitudeDeg:      o.Location.Longitude(),
			AltitudeKm:        o.AltitudeKm,
			GateSpacingKm:     o.GateSpacingKm,
			StartRangeKm:      o.StartRangeKm,
			HorizBeamWidthDeg: 1,
			VertBeamWidthDeg:  1,
			PulseWidthUs:      1,
			PRFHz:             1000,
			WavelengthCm:      5.3,
			UnambigVelMps:     o.UnambigVelMps,
			UnambigRangeKm:    150,
			NGates:            int32(o.NumGates),
			NSamples:          64,
			Extra: map[string]any{
				"source": "synthetic",
				"calibration": map[string]any{
					"radar_const": 70.1,
					"noise_dbm":   -112.0,
				},
			},
		},
		Scan:      o.Scan,
		TimeBegin: o.Time,
		TimeEnd:   o.Time.Add(time.Duration(len(o.Angles)) * 30 * time.Second),
	}

	for _, m := range o.Moments {
		base := strings.TrimSuffix(m.String(), "_F")
		h := FieldHeader{Name: m.String(), Units: synthUnits[base], LongName: m.LongName()}
		if m.IsFiltered() {
			mv := float32(MissingValue)
			h.MissingValue = &mv
		}
		v.FieldHeaders = append(v.FieldHeaders, h)
	}
	v.Data = make([][]math.Array2D, len(o.Moments))

	for _, angle := range o.Angles {
		// Ray edges span the full circle for PPIs and horizon to zenith
		// for RHIs.
		edgeAngle := func(i int) float32 {
			return float32(i) / float32(o.NumRays) * util.Select[float32](rhi, 90, 360)
		}
		edgeRange := func(j int) float32 {
			return 1000 * (o.StartRangeKm + float32(j)*o.GateSpacingKm)
		}
		toCart := func(rangeM, rayAngle float32) [3]float32 {
			if rhi {
				return math.RadarToCartesian(rangeM, angle, rayAngle)
			}
			return math.RadarToCartesian(rangeM, rayAngle, angle)
		}

		x, y, z := math.MakeArray2D(o.NumRays+1, o.NumGates+1), math.MakeArray2D(o.NumRays+1, o.NumGates+1),
			math.MakeArray2D(o.NumRays+1, o.NumGates+1)
		for i := 0; i <= o.NumRays; i++ {
			for j := 0; j <= o.NumGates; j++ {
				p := toCart(edgeRange(j), edgeAngle(i))
				x.Set(i, j, p[0])
				y.Set(i, j, p[1])
				z.Set(i, j, p[2])
			}
		}

		fields := make(map[string]math.Array2D)
		for name := range synthUnits {
			fields[name] = math.MakeArray2D(o.NumRays, o.NumGates)
		}
		for i := 0; i < o.NumRays; i++ {
			phidp := float32(20)
			for j := 0; j < o.NumGates; j++ {
				rangeM := (edgeRange(j) + edgeRange(j+1)) / 2
				rayAngle := (edgeAngle(i) + edgeAngle(i+1)) / 2
				el := util.Select(rhi, rayAngle, angle)
				g := synthGate(toCart(rangeM, rayAngle), rangeM, el, o.UnambigVelMps)

				phidp += 2 * g.kdp * o.GateSpacingKm
				fields["DBMHC"].Set(i, j, g.dbmhc)
				fields["DBMVC"].Set(i, j, g.dbmhc-g.zdr)
				fields["DBZ"].Set(i, j, g.dbz)
				fields["DBZVC"].Set(i, j, g.dbz-g.zdr)
				fields["VEL"].Set(i, j, g.vel)
				fields["WIDTH"].Set(i, j, g.width)
				fields["ZDR"].Set(i, j, g.zdr)
				fields["RHOHV"].Set(i, j, g.rhohv)
				fields["PHIDP"].Set(i, j, phidp)
				fields["KDP"].Set(i, j, g.kdp)
				fields["NCP"].Set(i, j, g.ncp)
			}
		}

		ncp := fields["NCP"]
		for f, m := range o.Moments {
			d := fields[strings.TrimSuffix(m.String(), "_F")].Clone()
			if m.IsFiltered() {
				for k := range d.Data {
					if ncp.Data[k] < 0.3 {
						d.Data[k] = MissingValue
					}
				}
			}
			v.Data[f] = append(v.Data[f], d)
		}

		if rhi {
			v.Elevations = append(v.Elevations, 0)
			v.Azimuths = append(v.Azimuths, angle)
		} else {
			v.Elevations = append(v.Elevations, angle)
			v.Azimuths = append(v.Azimuths, 0)
		}
		v.X = append(v.X, x)
		v.Y = append(v.Y, y)
		v.Z = append(v.Z, z)
	}

	return v
}

type gate struct {
	dbz, dbmhc, vel, width, zdr, rhohv, kdp, ncp float32
}

// synthGate evaluates the synthetic atmosphere at a single gate.
func synthGate(p [3]float32, rangeM, elDeg, unambigVelMps float32) gate {
	const (
		cellX, cellY = 30000, 40000
		cellSigma    = 12000
		cellTop      = 9000
		windU, windV = 12, -8
	)

	dx, dy := float64(p[0]-cellX), float64(p[1]-cellY)
	f := float32(gomath.Exp(-(dx*dx+dy*dy)/(2*cellSigma*cellSigma)) * gomath.Exp(-gomath.Pow(float64(p[2])/cellTop, 2)))

	var g gate
	g.dbz = -10 + 65*f + 12*math.Exp(-rangeM/15000)
	g.ncp = math.Clamp(0.15+(g.dbz+10)/40, 0, 1)
	g.dbmhc = g.dbz - 20*math.Log10(max(rangeM/1000, 0.1)) - 70

	// Radial component of the wind, folded into the Nyquist interval.
	if rh := math.Sqrt(p[0]*p[0] + p[1]*p[1]); rh > 0 {
		vr := (windU*p[0] + windV*p[1]) / rh * math.Cos(math.Radians(elDeg))
		vr += 10 * f
		n := 2 * unambigVelMps
		g.vel = vr - n*math.Floor(vr/n+0.5)
	}

	g.width = 1 + 4*f
	g.zdr = 0.2 + 3.5*f
	g.rhohv = 0.995 - 0.08*f
	if g.dbz < 0 {
		g.rhohv = 0.7
	}
	g.kdp = 3 * f * f
	return g
}
