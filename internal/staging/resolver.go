package staging

import (
	"fmt"
	"path"
	"strings"
)

// Category describes where a raw file path lives relative to the remote
// storage root. It is a pure function of the path and the storage root.
type Category int

const (
	// CategoryLocal is a bare relative filename, assumed to live in the
	// invoking working directory.
	CategoryLocal Category = iota
	// CategoryLocalNested is a relative path containing directory components.
	CategoryLocalNested
	// CategoryMirrorRoot is an absolute path outside the storage root.
	CategoryMirrorRoot
	// CategoryRemoteStorage is a path already under the storage root.
	CategoryRemoteStorage
)

func (c Category) String() string {
	switch c {
	case CategoryLocal:
		return "LOCAL"
	case CategoryLocalNested:
		return "LOCAL_NESTED"
	case CategoryMirrorRoot:
		return "MIRROR_ROOT"
	case CategoryRemoteStorage:
		return "REMOTE_STORAGE"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Role marks a file reference as consumed or produced by the job.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
)

func (r Role) String() string {
	if r == RoleOutput {
		return "output"
	}
	return "input"
}

// TransferPolicy controls how inputs that already live under the storage
// root reach the worker.
type TransferPolicy int

const (
	// CopyToWorker copies storage-resident inputs into the worker's scratch
	// directory before the program starts.
	CopyToWorker TransferPolicy = iota
	// ReadInPlace leaves storage-resident inputs where they are; the program
	// reads them through the storage mount.
	ReadInPlace
)

// ValidationError reports a file reference that can never be staged, such as
// a path containing characters the storage layer cannot represent.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// TransferPlan is the fully resolved staging decision for one file reference.
type TransferPlan struct {
	RawPath  string
	Role     Role
	Category Category

	// Source is where the file is read from when staging (inputs only).
	Source string
	// StagedLocation is the file's rendezvous point on remote storage. For
	// outputs already under the storage root this is the literal raw path,
	// not a location under the mirror dir.
	StagedLocation string
	// WorkerLocation is the path relative to the worker's scratch directory
	// where the file appears (or is expected to be produced).
	WorkerLocation string
	// ArgumentRewrite replaces every literal occurrence of RawPath in the
	// job's argument list. It is the path the program sees at run time.
	ArgumentRewrite string
}

// NeedsUpload reports whether the file must be copied to its staged location
// before submission.
func (p TransferPlan) NeedsUpload() bool {
	return p.Role == RoleInput && p.Category != CategoryRemoteStorage
}

// Request is a single copy operation for the storage collaborator to execute.
type Request struct {
	Source      string
	Destination string
	Direction   Direction
}

// Direction distinguishes copies toward remote storage from copies out of it.
type Direction int

const (
	Upload Direction = iota
	Download
)

func (d Direction) String() string {
	if d == Download {
		return "download"
	}
	return "upload"
}

// Resolver classifies raw paths against a fixed remote storage root.
type Resolver struct {
	storageRoot string
}

// NewResolver returns a Resolver rooted at storageRoot, which must be an
// absolute path such as "/hdfs".
func NewResolver(storageRoot string) (*Resolver, error) {
	cleaned := path.Clean(storageRoot)
	if !strings.HasPrefix(cleaned, "/") || cleaned == "/" {
		return nil, &ValidationError{Path: storageRoot, Reason: "storage root must be an absolute path below /"}
	}
	return &Resolver{storageRoot: cleaned}, nil
}

// StorageRoot returns the root the resolver classifies against.
func (r *Resolver) StorageRoot() string {
	return r.storageRoot
}

// Classify places a raw path into exactly one category. The rules are
// checked in priority order: storage-resident, absolute, nested relative,
// bare relative.
func (r *Resolver) Classify(raw string) Category {
	switch {
	case r.underStorage(raw):
		return CategoryRemoteStorage
	case strings.HasPrefix(raw, "/"):
		return CategoryMirrorRoot
	case strings.ContainsRune(raw, '/'):
		return CategoryLocalNested
	default:
		return CategoryLocal
	}
}

func (r *Resolver) underStorage(p string) bool {
	return p == r.storageRoot || strings.HasPrefix(p, r.storageRoot+"/")
}

// CheckPath rejects raw paths that cannot name a file on the storage layer.
// It runs at job-construction time so that a bad reference fails before
// anything is submitted.
func CheckPath(raw string) error {
	if raw == "" {
		return &ValidationError{Path: raw, Reason: "path is empty"}
	}
	if strings.ContainsAny(raw, "\x00\n\r") {
		return &ValidationError{Path: raw, Reason: "path contains control characters"}
	}
	base := path.Base(raw)
	if base == "." || base == ".." || base == "/" {
		return &ValidationError{Path: raw, Reason: "path has no usable basename"}
	}
	return nil
}

// ResolveInput computes the transfer plan for a declared input file.
//
// Files not already on storage are staged at mirrorDir/basename and always
// copied into the worker scratch directory. Storage-resident files stay
// where they are; the policy decides whether the worker gets a local copy or
// reads through the mount.
func (r *Resolver) ResolveInput(raw, mirrorDir string, policy TransferPolicy) (TransferPlan, error) {
	if err := CheckPath(raw); err != nil {
		return TransferPlan{}, err
	}
	base := path.Base(raw)
	plan := TransferPlan{
		RawPath:  raw,
		Role:     RoleInput,
		Category: r.Classify(raw),
		Source:   raw,
	}

	if plan.Category == CategoryRemoteStorage {
		plan.StagedLocation = raw
		if policy == CopyToWorker {
			plan.WorkerLocation = base
			plan.ArgumentRewrite = base
		} else {
			plan.WorkerLocation = raw
			plan.ArgumentRewrite = raw
		}
		return plan, nil
	}

	plan.StagedLocation = path.Join(mirrorDir, base)
	plan.WorkerLocation = base
	plan.ArgumentRewrite = base
	return plan, nil
}

// ResolveOutput computes the transfer plan for a declared output file.
//
// The program always produces the file as a bare basename in the worker
// scratch directory. A raw path under the storage root names the exact final
// destination; anything else lands at mirrorDir/basename.
func (r *Resolver) ResolveOutput(raw, mirrorDir string) (TransferPlan, error) {
	if err := CheckPath(raw); err != nil {
		return TransferPlan{}, err
	}
	base := path.Base(raw)
	plan := TransferPlan{
		RawPath:         raw,
		Role:            RoleOutput,
		Category:        r.Classify(raw),
		WorkerLocation:  base,
		ArgumentRewrite: base,
	}

	if plan.Category == CategoryRemoteStorage {
		plan.StagedLocation = raw
	} else {
		plan.StagedLocation = path.Join(mirrorDir, base)
	}
	return plan, nil
}

// RewriteArgs returns a copy of args with every literal occurrence of a
// plan's raw path replaced by its argument rewrite. Arguments that do not
// match any declared file are left untouched.
func RewriteArgs(args []string, plans []TransferPlan) []string {
	rewritten := make([]string, len(args))
	copy(rewritten, args)
	for _, plan := range plans {
		for i, arg := range rewritten {
			if arg == plan.RawPath {
				rewritten[i] = plan.ArgumentRewrite
			}
		}
	}
	return rewritten
}

// UploadRequests lists the copies that must happen before submission so that
// every input is present at its staged location.
func UploadRequests(plans []TransferPlan) []Request {
	var reqs []Request
	for _, plan := range plans {
		if plan.NeedsUpload() {
			reqs = append(reqs, Request{
				Source:      plan.Source,
				Destination: plan.StagedLocation,
				Direction:   Upload,
			})
		}
	}
	return reqs
}

// DownloadRequests lists the copies that fetch produced outputs from their
// staged locations back to the raw paths the user asked for. Outputs whose
// staged location already is the raw path need no copy.
func DownloadRequests(plans []TransferPlan) []Request {
	var reqs []Request
	for _, plan := range plans {
		if plan.Role != RoleOutput || plan.StagedLocation == plan.RawPath {
			continue
		}
		reqs = append(reqs, Request{
			Source:      plan.StagedLocation,
			Destination: plan.RawPath,
			Direction:   Download,
		})
	}
	return reqs
}
