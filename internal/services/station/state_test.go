package station

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		path  string
		store *Store
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "station.db")
		var err error
		store, err = OpenStore(path)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			_ = store.Close()
		}
	})

	When("nothing was saved", func() {
		It("reports no state", func() {
			_, ok, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	When("a state was saved", func() {
		BeforeEach(func() {
			Expect(store.Save(State{Station: "desk-2", ShipmentID: "s-1", BoxID: "b-1", RequiresCode: true})).To(Succeed())
		})

		It("loads it back with a timestamp", func() {
			st, ok, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(st.Station).To(Equal("desk-2"))
			Expect(st.ShipmentID).To(Equal("s-1"))
			Expect(st.BoxID).To(Equal("b-1"))
			Expect(st.RequiresCode).To(BeTrue())
			Expect(st.SavedAt).NotTo(BeZero())
		})

		It("survives reopening the file", func() {
			Expect(store.Close()).To(Succeed())
			var err error
			store, err = OpenStore(path)
			Expect(err).NotTo(HaveOccurred())

			st, ok, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(st.ShipmentID).To(Equal("s-1"))
		})

		It("is replaced by the next save", func() {
			Expect(store.Save(State{Station: "desk-2"})).To(Succeed())
			st, _, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(st.ShipmentID).To(BeEmpty())
			Expect(st.RequiresCode).To(BeFalse())
		})
	})
})
