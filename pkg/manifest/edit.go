package manifest

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Append adds entries to one list section of manifest.yaml in place.
// The edit works on the parsed document tree, so comments, key order
// and list styles survive. section is "common", "system", "ignore" or a
// host tier name; entries already present are skipped. The edited
// document is re-validated before it is written, so an append can never
// leave an invalid manifest behind.
func Append(fsys types.FS, path, section string, entries []string) error {
	logger := logging.GetLogger("manifest")

	if section == keyConflict {
		return errors.Newf(errors.ErrInvalidInput, "%s is not a path list", keyConflict)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestLoad, "failed to read manifest %s", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, errors.ErrManifestParse, "failed to parse manifest")
	}
	root, err := documentRoot(&doc)
	if err != nil {
		return err
	}
	seq, err := sectionList(root, section)
	if err != nil {
		return err
	}
	if seq == nil {
		seq = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: section},
			seq)
	}

	present := make(map[string]bool, len(seq.Content))
	for _, item := range seq.Content {
		present[item.Value] = true
	}
	added := 0
	for _, entry := range entries {
		if present[entry] {
			continue
		}
		present[entry] = true
		seq.Content = append(seq.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Style: yaml.DoubleQuotedStyle,
			Value: entry,
		})
		added++
	}
	if added == 0 {
		logger.Debug().Str("section", section).Msg("nothing to append, all entries present")
		return nil
	}

	out, err := encodeDocument(&doc)
	if err != nil {
		return err
	}
	// The appended entries go through the same validation a load does;
	// a rejected edit leaves the file untouched.
	if _, err := Parse(out); err != nil {
		return err
	}
	if err := fsys.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write manifest %s", path)
	}

	logger.Info().
		Str("path", path).
		Str("section", section).
		Int("added", added).
		Msg("manifest updated")
	return nil
}

// documentRoot returns the top-level mapping, materializing one for an
// empty document.
func documentRoot(doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind == 0 {
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		*doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}
		return mapping, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New(errors.ErrManifestParse, "manifest document is empty")
	}
	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		return root, nil
	}
	if root.Tag == "!!null" {
		*root = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		return root, nil
	}
	return nil, errors.New(errors.ErrManifestInvalid,
		"manifest must be a mapping of tier names to path lists")
}

// sectionList finds the sequence node for a section, turning an empty
// "tier:" key into a sequence. nil means the section does not exist yet.
func sectionList(root *yaml.Node, section string) (*yaml.Node, error) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != section {
			continue
		}
		val := root.Content[i+1]
		if val.Kind == yaml.SequenceNode {
			return val, nil
		}
		if val.Tag == "!!null" {
			*val = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			return val, nil
		}
		return nil, errors.Newf(errors.ErrManifestInvalid, "section %q is not a path list", section)
	}
	return nil, nil
}

func encodeDocument(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render manifest")
	}
	return buf.Bytes(), nil
}
