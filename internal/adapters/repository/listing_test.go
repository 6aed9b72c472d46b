package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	repository "github.com/okian/stockwatch/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileListingStore(t *testing.T) {
	Convey("Given a file listing store in a temp dir", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "url.json")
		store, err := repository.NewFileListingStore(path)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When saving and loading rows", func() {
			rows := []repository.ListingRow{
				{EventID: "10", Event: "Night Run", URL: "night-run-curitiba-2025"},
				{URL: "blue-run-florianopolis-2025"},
			}
			So(store.Save(ctx, rows), ShouldBeNil)
			got, err := store.Load(ctx)

			Convey("Then the rows round-trip in order", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, rows)
			})

			Convey("And no temp files are left behind", func() {
				entries, _ := os.ReadDir(filepath.Dir(path))
				So(entries, ShouldHaveLength, 1)
			})
		})

		Convey("When loading before saving", func() {
			_, err := store.Load(ctx)

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the file holds garbage", func() {
			So(os.MkdirAll(filepath.Dir(path), 0o750), ShouldBeNil)
			So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)
			_, err := store.Load(ctx)

			Convey("Then it reports a load error", func() {
				So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When removing", func() {
			So(store.Save(ctx, nil), ShouldBeNil)
			So(store.Remove(ctx), ShouldBeNil)

			Convey("Then the file is gone and a second remove is fine", func() {
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
				So(store.Remove(ctx), ShouldBeNil)
			})
		})

		Convey("When the path is empty", func() {
			_, err := repository.NewFileListingStore("")

			Convey("Then construction fails", func() {
				So(err, ShouldEqual, repository.ErrEmptyPath)
			})
		})
	})
}
