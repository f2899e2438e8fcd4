package handlers

import (
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/gallery"
)

func GalleryHandler(g *gallery.Gallery, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := g.List()
		if err != nil {
			logger.Error("unable to load gallery assets", zap.String("dir", g.Dir()), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Unable to load gallery.")
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// filesOnly hides directories so the file server never renders a listing.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}

// AssetsHandler serves the files of the gallery directory.
func AssetsHandler(g *gallery.Gallery) http.Handler {
	return http.FileServer(filesOnly{fs: http.Dir(g.Dir())})
}
