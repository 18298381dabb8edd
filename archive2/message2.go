package archive2

import (
	"encoding/binary"
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// Message2 RDA Status Data (User 3.2.4.6)
type Message2 struct {
	Header MessageHeader
	RDAStatusData
}

// RDAStatusData is the fixed portion of the RDA status message body
type RDAStatusData struct {
	RDAStatus                       uint16
	OperabilityStatus               uint16
	ControlStatus                   uint16
	AuxPowerGeneratorState          uint16
	AvgTxPower                      uint16
	HorizRefCalibCorr               uint16
	DataTxEnabled                   uint16
	VolumeCoveragePatternNum        uint16
	RDAControlAuth                  uint16
	RDABuild                        uint16
	OperationalMode                 uint16
	SuperResStatus                  uint16
	ClutterMitigationDecisionStatus uint16
	AvsetStatus                     uint16
	RDAAlarmSummary                 uint16
	CommandAck                      uint16
	ChannelControlStatus            uint16
	SpotBlankingStatus              uint16
	BypassMapGenDate                uint16
	BypassMapGenTime                uint16
	ClutterFilterMapGenDate         uint16
	ClutterFilterMapGenTime         uint16
	VertRefCalibCorr                uint16
	TransitionPwrSourceStatus       uint16
	RMSControlStatus                uint16
	PerformanceCheckStatus          uint16
	AlarmCodes                      uint16
	Spares                          [20]byte
}

// NewMessage2 decodes an RDA status message body.
func NewMessage2(header MessageHeader, c *wire.Cursor) (*Message2, error) {
	m2 := &Message2{Header: header}
	if err := m2.Parse(c); err != nil {
		return nil, err
	}
	return m2, nil
}

// MessageHeader of this message
func (m2 *Message2) MessageHeader() MessageHeader {
	return m2.Header
}

// Parse reads the body. Anything past the fixed status fields (alarm code
// extensions on newer builds) is consumed without being decoded.
func (m2 *Message2) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("message", MessageTypeRDAStatusData)
	log.Trace("Parsing RDA Status Data (Message Type 2)")

	mark := c.Mark()
	size := m2.Header.BodySize()

	var err error
	if size < binary.Size(m2.RDAStatusData) {
		err = wire.Violation("status message too short: %d bytes", size)
		log.Warn(err)
	} else {
		c.ReadStruct(&m2.RDAStatusData)
	}

	wire.Drain(c, mark, size)
	if verr := wire.Validate(c, mark, size, log); verr != nil {
		return verr
	}
	if err != nil {
		m2.RDAStatusData = RDAStatusData{}
	}
	return err
}

// GetBuildNumber returns the RDA build, eg 19.00. Older builds were scaled by 10
// rather than 100.
func (m2 *Message2) GetBuildNumber() float32 {
	build := float32(m2.RDABuild) / 100
	if build < 2 {
		build = float32(m2.RDABuild) / 10
	}
	return build
}

func (m2 *Message2) String() string {
	return fmt.Sprintf("Message 2 - build %.2f vcp=%d (%s)",
		m2.GetBuildNumber(),
		m2.VolumeCoveragePatternNum,
		VCPDescription(m2.VolumeCoveragePatternNum),
	)
}
