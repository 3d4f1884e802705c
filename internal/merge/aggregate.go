package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// DocAnalysis is one done document analysis feeding module aggregation.
type DocAnalysis struct {
	DocumentID      string
	DocumentType    domain.DocumentType
	SourceHash      string
	CoveragePercent float64
	Payload         *domain.AnalysisPayload
}

// AggregateModule merges all done document analyses of a module into the
// module-level knowledge index, style profiles, and inverted topic index.
// It applies the same merge-by-normalized-key strategy one level up.
func (m *Merger) AggregateModule(moduleID string, docs []DocAnalysis) domain.ModuleProfileRecord {
	rec := domain.ModuleProfileRecord{
		ModuleID:            moduleID,
		ProfileVersion:      domain.AnalysisSchemaVersion,
		SourceHashAggregate: AggregateHash(docs),
		Status:              domain.StatusDone,
	}
	if len(docs) == 0 {
		rec.Status = domain.StatusMissing
		return rec
	}

	concepts := map[string]*domain.Concept{}
	formulas := map[string]*domain.Formula{}
	procedures := map[string]*domain.Procedure{}
	topicsByKey := map[string]*domain.Topic{}
	topicDocs := map[string]map[string]bool{}

	var conceptOrder, formulaOrder, procedureOrder, topicOrder []string
	var coverageSum float64

	for _, doc := range docs {
		coverageSum += doc.CoveragePercent
		if doc.Payload == nil {
			continue
		}
		p := doc.Payload

		for _, c := range p.Concepts {
			key := conceptKey(c.Term)
			if key == "" {
				continue
			}
			if existing, ok := concepts[key]; ok {
				mergeConcept(existing, c)
			} else {
				cc := c
				concepts[key] = &cc
				conceptOrder = append(conceptOrder, key)
			}
		}
		for _, f := range p.Formulas {
			key := formulaKey(f.Latex)
			if key == "" {
				continue
			}
			if existing, ok := formulas[key]; ok {
				mergeFormula(existing, f)
			} else {
				ff := f
				formulas[key] = &ff
				formulaOrder = append(formulaOrder, key)
			}
		}
		for _, pr := range p.Procedures {
			key := procedureKey(pr.Name)
			if key == "" {
				continue
			}
			if existing, ok := procedures[key]; ok {
				mergeProcedure(existing, pr)
			} else {
				pp := pr
				procedures[key] = &pp
				procedureOrder = append(procedureOrder, key)
			}
		}

		for _, t := range p.Topics {
			key, display, ok := m.topics.Canonicalize(t.Name)
			if !ok {
				continue
			}
			id := domain.TopicID(moduleID, key)
			topic, exists := topicsByKey[key]
			if !exists {
				topic = &domain.Topic{TopicID: id, Name: display}
				topicsByKey[key] = topic
				topicDocs[id] = map[string]bool{}
				topicOrder = append(topicOrder, key)
			}
			topic.EvidenceSnippets = unionEvidence(topic.EvidenceSnippets, t.EvidenceSnippets)
			if !topicDocs[id][doc.DocumentID] {
				topicDocs[id][doc.DocumentID] = true
				// One weight point per mentioning document, a fraction per
				// evidence snippet: evidence-rich topics outrank thin ones
				// among equally-mentioned topics.
				topic.Weight += 1.0
			}
		}
	}

	for _, k := range conceptOrder {
		rec.Knowledge.Concepts = append(rec.Knowledge.Concepts, *concepts[k])
	}
	for _, k := range formulaOrder {
		rec.Knowledge.Formulas = append(rec.Knowledge.Formulas, *formulas[k])
	}
	for _, k := range procedureOrder {
		rec.Knowledge.Procedures = append(rec.Knowledge.Procedures, *procedures[k])
	}

	rec.Knowledge.TopicDocs = make(map[string][]string, len(topicDocs))
	for _, k := range topicOrder {
		topic := topicsByKey[k]
		topic.Weight += 0.25 * float64(len(topic.EvidenceSnippets))
		docIDs := make([]string, 0, len(topicDocs[topic.TopicID]))
		for id := range topicDocs[topic.TopicID] {
			docIDs = append(docIDs, id)
		}
		sort.Strings(docIDs)
		topic.DocIDs = docIDs
		rec.Knowledge.TopicDocs[topic.TopicID] = docIDs
		rec.Knowledge.Topics = append(rec.Knowledge.Topics, *topic)
	}

	rec.ExamStyleProfile = buildStyleProfile(docs, domain.DocExam)
	rec.ExerciseStyle = buildStyleProfile(docs, domain.DocExercise)
	rec.CoveragePercent = coverageSum / float64(len(docs))
	return rec
}

// AggregateHash hashes the sorted constituent document hashes so any
// constituent change invalidates the aggregate.
func AggregateHash(docs []DocAnalysis) string {
	hashes := make([]string, 0, len(docs))
	for _, d := range docs {
		hashes = append(hashes, d.SourceHash)
	}
	sort.Strings(hashes)
	sum := sha256.Sum256([]byte(strings.Join(hashes, "\n")))
	return hex.EncodeToString(sum[:])
}

func buildStyleProfile(docs []DocAnalysis, docType domain.DocumentType) *domain.StyleProfile {
	profile := &domain.StyleProfile{}
	verbs := map[string]bool{}
	patterns := map[string]bool{}

	for _, doc := range docs {
		if doc.DocumentType != docType || doc.Payload == nil || doc.Payload.Signals == nil {
			continue
		}
		profile.DocumentCount++
		sig := doc.Payload.Signals
		profile.UsesTables = profile.UsesTables || sig.UsesTables
		profile.UsesSubtasks = profile.UsesSubtasks || sig.UsesSubtasks
		for _, v := range sig.ImperativeVerbs {
			verbs[v] = true
		}
		for _, p := range sig.PointsPatterns {
			patterns[p] = true
		}
	}
	if profile.DocumentCount == 0 {
		return nil
	}
	profile.ImperativeVerbs = sortedKeys(verbs)
	profile.PointsPatterns = sortedKeys(patterns)
	return profile
}
