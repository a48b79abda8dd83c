package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConf() SketchConf {
	return SketchConf{
		CmapSize:         10,
		CmapNo:           3,
		CounterSize:      100,
		CounterNo:        2,
		QueueSize:        5,
		StartThreshold:   5,
		DataKernelWindow: 1,
	}
}

func TestValidate_AcceptsSaneConfig(t *testing.T) {
	assert.NoError(t, validConf().Validate())
}

func TestValidate_RejectsBadSizes(t *testing.T) {
	c := validConf()
	c.CmapSize = 1
	assert.Error(t, c.Validate())

	c = validConf()
	c.CmapNo = 0
	assert.Error(t, c.Validate())

	c = validConf()
	c.CounterSize = 0
	assert.Error(t, c.Validate())

	c = validConf()
	c.CounterNo = 0
	assert.Error(t, c.Validate())

	c = validConf()
	c.QueueSize = 0
	assert.Error(t, c.Validate())

	c = validConf()
	c.DataKernelWindow = 0
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsInvertedBounds(t *testing.T) {
	c := validConf()
	start, end := 5.0, 5.0
	c.CmapStart, c.CmapEnd = &start, &end
	assert.Error(t, c.Validate())

	start, end = 10, 0
	c.CmapStart, c.CmapEnd = &start, &end
	assert.Error(t, c.Validate())
}

func TestBounds_DefaultsWhenUnset(t *testing.T) {
	c := validConf()
	start, end := c.bounds()
	assert.Equal(t, defaultCmapStart, start)
	assert.Equal(t, defaultCmapEnd, end)
}

func TestBounds_UsesConfiguredValues(t *testing.T) {
	c := validConf()
	start, end := 0.0, 10.0
	c.CmapStart, c.CmapEnd = &start, &end
	gotStart, gotEnd := c.bounds()
	assert.Equal(t, 0.0, gotStart)
	assert.Equal(t, 10.0, gotEnd)
}
