// Package ballot reads elections from files.
//
// Supported formats, chosen by file extension:
//
//   - .csv: one header row naming the candidates, then one row per voter
//     holding a numeric preference code per candidate (lower is preferred,
//     blank is unranked). Preamble and skip rows accommodate exports that
//     carry extra rows around the candidate names.
//   - .yaml / .yml: a Document with rankings written as "A>B>C".
//   - .cue: the same Document shape, validated against an embedded
//     #Election schema before decoding.
//   - .json: the same Document shape, used by the HTTP API.
//
// Candidate IDs and names are trimmed and NFC-normalised so that visually
// identical names compare equal. Equal rankings within one ballot are
// rejected as AMBIGUOUS; all other malformed input is INVALID_INPUT. Both
// surface as *ParseError, which unwraps to an *engine.TallyError.
package ballot
