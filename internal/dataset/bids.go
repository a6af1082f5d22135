package dataset

import "strings"

// compoundExtensions lists multi-dot extensions that must be kept whole
// rather than split at the first dot: compound extensions such as
// .nii.gz are preserved as a single extension.
var compoundExtensions = []string{
	".nii.gz", ".tsv.gz", ".json.gz", ".bval.gz", ".bvec.gz",
}

// ParseEntities parses a BIDS filename into its key-value entity map plus
// the derived "suffix" and "extension" keys: segments of the form
// "key-value" separated by "_"; the final segment before the extension is
// the suffix; compound extensions such as ".nii.gz" are kept intact.
// datatype is supplied by the caller (it is derived from the containing
// directory, which this pure filename parser has no access to) and merged
// into the returned map under "datatype" when non-empty.
func ParseEntities(filename, datatype string) map[string]string {
	name, ext := splitExtension(filename)
	entities := map[string]string{}
	if ext != "" {
		entities["extension"] = ext
	}
	if datatype != "" {
		entities["datatype"] = datatype
	}

	segments := strings.Split(name, "_")
	if len(segments) == 0 {
		return entities
	}

	// The final segment before the extension is the suffix unless it is
	// itself a key-value pair.
	last := segments[len(segments)-1]
	suffixSeg := -1
	if !strings.Contains(last, "-") {
		entities["suffix"] = last
		suffixSeg = len(segments) - 1
	}

	for i, seg := range segments {
		if i == suffixSeg {
			continue
		}
		key, val, ok := strings.Cut(seg, "-")
		if !ok {
			continue
		}
		entities[strings.ToLower(key)] = val
	}
	return entities
}

func splitExtension(filename string) (base, ext string) {
	for _, ce := range compoundExtensions {
		if strings.HasSuffix(filename, ce) {
			return strings.TrimSuffix(filename, ce), strings.TrimPrefix(ce, ".")
		}
	}
	idx := strings.IndexByte(filename, '.')
	if idx < 0 {
		return filename, ""
	}
	return filename[:idx], filename[idx+1:]
}

// MergeMetadata merges sidecar JSON layers from shallow (dataset root) to
// deep (file-adjacent), with deeper layers overriding shallower ones, per
// the BIDS inheritance principle.
func MergeMetadata(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
