// Package schema declares the recognized fields of every library record kind
// and validates generic decoded values against them.
package schema

// Kind is the primitive kind a field value must have.
type Kind int

const (
	String Kind = iota
	Number
	Boolean
	Object
	Date
	Data
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Object:
		return "object"
	case Date:
		return "Date"
	case Data:
		return "Buffer"
	}
	return "undefined"
}

// Field describes one recognized key.
type Field struct {
	Kind     Kind
	Required bool
}

// Schema is the declaration of one record kind. Children names the schema used
// for every element of an Object field.
type Schema struct {
	Name     string
	Fields   map[string]Field
	Children map[string]string
}

// Registered schema names.
const (
	LibrarySchema      = "library"
	TrackSchema        = "track"
	PlaylistSchema     = "playlist"
	PlaylistItemSchema = "playlist item"
)

var registry = map[string]*Schema{
	LibrarySchema: {
		Name: LibrarySchema,
		Fields: map[string]Field{
			"Application Version":   {String, true},
			"Date":                  {Date, true},
			"Features":              {Number, true},
			"Library Persistent ID": {String, true},
			"Major Version":         {Number, true},
			"Minor Version":         {Number, true},
			"Music Folder":          {String, true},
			"Playlists":             {Object, true},
			"Show Content Ratings":  {Boolean, true},
			"Tracks":                {Object, true},
		},
		Children: map[string]string{
			"Tracks":    TrackSchema,
			"Playlists": PlaylistSchema,
		},
	},
	TrackSchema: {
		Name: TrackSchema,
		Fields: map[string]Field{
			"Album":                 {String, false},
			"Album Artist":          {String, false},
			"Album Rating":          {Number, false},
			"Album Rating Computed": {Boolean, false},
			"Artist":                {String, false},
			"Artwork Count":         {Number, false},
			"Bit Rate":              {Number, false},
			"BPM":                   {Number, false},
			"Clean":                 {Boolean, false},
			"Comments":              {String, false},
			"Compilation":           {Boolean, false},
			"Composer":              {String, false},
			"Content Rating":        {String, false},
			"Date Added":            {Date, true},
			"Date Modified":         {Date, false},
			"Disabled":              {Boolean, false},
			"Disc Count":            {Number, false},
			"Disc Number":           {Number, false},
			"Episode":               {String, false},
			"Episode Order":         {Number, false},
			"Equalizer":             {String, false},
			"Explicit":              {Boolean, false},
			"File Folder Count":     {Number, false},
			"File Type":             {Number, false},
			"Genre":                 {String, false},
			"Grouping":              {String, false},
			"Has Video":             {Boolean, false},
			"Kind":                  {String, false},
			"Library Folder Count":  {Number, false},
			"Location":              {String, false},
			"Loved":                 {Boolean, false},
			"Movie":                 {Boolean, false},
			"Music Video":           {Boolean, false},
			"Name":                  {String, true},
			"Part Of Gapless Album": {Boolean, false},
			"Persistent ID":         {String, true},
			"Play Count":            {Number, false},
			"Play Date":             {Number, false},
			"Play Date UTC":         {Date, false},
			"Podcast":               {Boolean, false},
			"Protected":             {Boolean, false},
			"Purchased":             {Boolean, false},
			"Rating":                {Number, false},
			"Rating Computed":       {Boolean, false},
			"Release Date":          {Date, false},
			"Sample Rate":           {Number, false},
			"Season":                {Number, false},
			"Series":                {String, false},
			"Size":                  {Number, false},
			"Skip Count":            {Number, false},
			"Skip Date":             {Date, false},
			"Sort Album":            {String, false},
			"Sort Album Artist":     {String, false},
			"Sort Artist":           {String, false},
			"Sort Composer":         {String, false},
			"Sort Name":             {String, false},
			"Sort Series":           {String, false},
			"Start Time":            {Number, false},
			"Stop Time":             {Number, false},
			"Total Time":            {Number, false},
			"Track Count":           {Number, false},
			"Track ID":              {Number, true},
			"Track Number":          {Number, false},
			"Track Type":            {String, true},
			"TV Show":               {Boolean, false},
			"Unplayed":              {Boolean, false},
			"Volume Adjustment":     {Number, false},
			"Work":                  {String, false},
			"Year":                  {Number, false},
		},
	},
	PlaylistSchema: {
		Name: PlaylistSchema,
		Fields: map[string]Field{
			"All Items":              {Boolean, true},
			"Audiobooks":             {Boolean, false},
			"Distinguished Kind":     {Number, false},
			"Folder":                 {Boolean, false},
			"Master":                 {Boolean, false},
			"Movies":                 {Boolean, false},
			"Music":                  {Boolean, false},
			"Name":                   {String, true},
			"Parent Persistent ID":   {String, false},
			"Playlist ID":            {Number, true},
			"Playlist Items":         {Object, false},
			"Playlist Persistent ID": {String, true},
			"Purchased Music":        {Boolean, false},
			"Smart Criteria":         {Data, false},
			"Smart Info":             {Data, false},
			"TV Shows":               {Boolean, false},
			"Visible":                {Boolean, false},
		},
		Children: map[string]string{
			"Playlist Items": PlaylistItemSchema,
		},
	},
	PlaylistItemSchema: {
		Name: PlaylistItemSchema,
		Fields: map[string]Field{
			"Track ID": {Number, true},
		},
	},
}

// Lookup returns the registered schema with the given name.
func Lookup(name string) (*Schema, bool) {
	s, ok := registry[name]
	return s, ok
}
