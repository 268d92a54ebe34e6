package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/call-assistant/pkg/phone"
)

func TestIdentityResolverNormalizesCallSid(t *testing.T) {
	r := IdentityResolver{}
	assert.Equal(t, phone.Key("+123"), r.Resolve("CA123"))
	r.Observe("CA123", "+14155550100")
	assert.Equal(t, phone.Key("+123"), r.Resolve("CA123"))
}

func TestDirectoryResolverLearnsCounterparty(t *testing.T) {
	r := NewDirectoryResolver(time.Hour)
	defer r.Close()

	assert.Equal(t, phone.Key("+123"), r.Resolve("CA123"))

	r.Observe("CA123", "(415) 555-0100")
	assert.Equal(t, phone.Key("+14155550100"), r.Resolve("CA123"))

	r.Observe("CA999", "")
	assert.Equal(t, phone.Key("+999"), r.Resolve("CA999"))
}
