package station

import (
	"testing"

	"github.com/fatih/color"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Station Suite")
}

var _ = BeforeSuite(func() {
	color.NoColor = true
})
