package server

import (
	"sort"
	"time"

	"github.com/jddeal/go-wsr88d/archive2"
	"github.com/jddeal/go-wsr88d/level3"
)

type elevationSummary struct {
	Number  int     `json:"number"`
	Angle   float32 `json:"angle"`
	Radials int     `json:"radials"`
}

type clutterSummary struct {
	GeneratedAt       time.Time `json:"generatedAt"`
	ElevationSegments uint16    `json:"elevationSegments"`
}

type level2Summary struct {
	Filename       string             `json:"filename"`
	ICAO           string             `json:"icao"`
	Date           time.Time          `json:"date"`
	Build          float32            `json:"build"`
	VCP            uint16             `json:"vcp,omitempty"`
	VCPDescription string             `json:"vcpDescription,omitempty"`
	MessageCounts  map[uint8]int      `json:"messageCounts"`
	Elevations     []elevationSummary `json:"elevations"`
	ClutterMap     *clutterSummary    `json:"clutterFilterMap,omitempty"`
}

func summarizeArchive2(ar2 *archive2.Archive2) level2Summary {
	s := level2Summary{
		Filename:      ar2.VolumeHeader.Filename(),
		ICAO:          string(ar2.VolumeHeader.ICAO[:]),
		Date:          ar2.VolumeHeader.Date(),
		Build:         ar2.Build(),
		MessageCounts: ar2.MessageCounts,
		Elevations:    []elevationSummary{},
	}
	if vcp := ar2.VolumeCoveragePattern; vcp != nil {
		s.VCP = vcp.PatternNumber
		s.VCPDescription = archive2.VCPDescription(vcp.PatternNumber)
	}
	if cfm := ar2.ClutterFilterMap; cfm != nil {
		s.ClutterMap = &clutterSummary{
			GeneratedAt:       cfm.GeneratedAt(),
			ElevationSegments: cfm.NumberOfElevationSegments(),
		}
	}

	for elv, radials := range ar2.ElevationScans {
		if len(radials) == 0 {
			continue
		}
		s.Elevations = append(s.Elevations, elevationSummary{
			Number:  elv,
			Angle:   radials[0].Header.ElevationAngle,
			Radials: len(radials),
		})
	}
	sort.Slice(s.Elevations, func(i, j int) bool { return s.Elevations[i].Number < s.Elevations[j].Number })
	return s
}

type layerSummary struct {
	Packets map[uint16]int `json:"packets"`
}

type level3Summary struct {
	WMOHeader   *level3.WMOHeader `json:"wmoHeader,omitempty"`
	MessageCode int16             `json:"messageCode"`
	ProductCode int16             `json:"productCode"`
	GeneratedAt time.Time         `json:"generatedAt"`
	VolumeStart time.Time         `json:"volumeScanStart"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	VCP         uint16            `json:"vcp"`
	Compressed  bool              `json:"compressed"`
	Layers      []layerSummary    `json:"layers"`
	Pages       int               `json:"graphicPages"`
	TextPages   [][]string        `json:"tabularPages,omitempty"`
}

func summarizeLevel3(f *level3.File) level3Summary {
	m := f.Message
	s := level3Summary{
		WMOHeader:   f.WMOHeader,
		MessageCode: m.Header.MessageCode,
		ProductCode: m.Description.ProductCode,
		GeneratedAt: m.Description.GeneratedAt(),
		VolumeStart: m.Description.VolumeScanStart(),
		Latitude:    m.Description.LatitudeDegrees(),
		Longitude:   m.Description.LongitudeDegrees(),
		VCP:         m.Description.VolumeCoveragePattern,
		Compressed:  m.Description.Compressed(),
		Layers:      []layerSummary{},
	}
	if m.Symbology != nil {
		for i := 0; i < m.Symbology.NumberOfLayers(); i++ {
			layer := layerSummary{Packets: map[uint16]int{}}
			for _, p := range m.Symbology.Layer(i) {
				layer.Packets[p.PacketCode()]++
			}
			s.Layers = append(s.Layers, layer)
		}
	}
	if m.Graphic != nil {
		s.Pages = len(m.Graphic.Pages())
	}
	if m.Tabular != nil {
		s.TextPages = m.Tabular.Pages()
	}
	return s
}
