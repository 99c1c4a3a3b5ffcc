package prompts

import _ "embed"

// Embedded prompt files

//go:embed complaint_formal.txt
var complaintFormal string

//go:embed complaint_funny.txt
var complaintFunny string

//go:embed complaint_angry.txt
var complaintAngry string

//go:embed rationale.txt
var rationale string

//go:embed handle_extraction.txt
var handleExtraction string

func ComplaintFormal() string  { return complaintFormal }
func ComplaintFunny() string   { return complaintFunny }
func ComplaintAngry() string   { return complaintAngry }
func Rationale() string        { return rationale }
func HandleExtraction() string { return handleExtraction }
