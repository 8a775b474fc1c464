package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/services"
)

const (
	PDF_CONTENT_TYPE  = "application/pdf"
	XLSX_CONTENT_TYPE = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ---------------------------------------------------------------------------------//
// Files
// --------------------------------------------------------------------------------//

func personFiles(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	files, err := svc.Files.ForPerson(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, files, http.StatusOK)
}

// uploadFile takes a multipart form with a "file" part and an optional "photo=true" field.
func uploadFile(rw http.ResponseWriter, r *http.Request) {
	personID, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	if !svc.Files.Enabled() {
		writeError(rw, apperr.New(apperr.ErrStorageDisabled))
		return
	}

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(rw, r.Body, services.MAX_UPLOAD_SIZE+1<<20)
	err = r.ParseMultipartForm(1 << 20)
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(rw, apperr.Wrap(apperr.ErrFileTooLarge, err))
		return
	}
	if err != nil {
		writeError(rw, apperr.Wrap(apperr.ErrBind, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(rw, apperr.Wrap(apperr.ErrBind, err))
		return
	}
	defer file.Close()

	photo, _ := strconv.ParseBool(r.FormValue("photo"))
	uploaded, err := svc.Files.Upload(r.Context(), personID, services.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Photo:       photo,
	}, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, uploaded, http.StatusCreated)
}

func downloadFile(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrFileNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	file, rc, err := svc.Files.Open(r.Context(), id)
	if err != nil {
		writeError(rw, err)
		return
	}
	defer rc.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	rw.WriteHeader(http.StatusOK)

	_, err = io.Copy(rw, rc)
	if err != nil {
		logg.Errorf("downloadFile %v: %v", id, err)
	}
}

func deleteFile(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrFileNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Files.Delete(r.Context(), id)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Reports
// --------------------------------------------------------------------------------//

func attendanceReport(rw http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	platoon, err := intQuery(r, "platoon")
	if err != nil {
		writeError(rw, err)
		return
	}

	writeDocument(rw, PDF_CONTENT_TYPE, fmt.Sprintf("teilnahmekontrolle-%d.pdf", year), func(w io.Writer) error {
		return svc.Reports.AttendancePDF(w, year, platoon)
	})
}

func personSheetReport(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	year, err := yearQuery(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeDocument(rw, PDF_CONTENT_TYPE, fmt.Sprintf("person-%d-%d.pdf", id, year), func(w io.Writer) error {
		return svc.Reports.PersonSheetPDF(w, id, year)
	})
}

func personnelReport(rw http.ResponseWriter, r *http.Request) {
	filter, err := personFilter(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeDocument(rw, PDF_CONTENT_TYPE, "personalliste.pdf", func(w io.Writer) error {
		return svc.Reports.PersonnelPDF(w, filter)
	})
}

func personnelExport(rw http.ResponseWriter, r *http.Request) {
	filter, err := personFilter(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeDocument(rw, XLSX_CONTENT_TYPE, "personalliste.xlsx", func(w io.Writer) error {
		return svc.Reports.PersonnelXLSX(w, filter)
	})
}
