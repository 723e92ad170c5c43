package catalog

// Category identifies one medical department.
type Category string

const (
	CategoryGeneral     Category = "General Check-up"
	CategoryCardiology  Category = "Cardiology"
	CategoryNeurology   Category = "Neurology"
	CategoryGynecology  Category = "Gynecology"
	CategoryOrthopedics Category = "Orthopedics"
)

type CategoryInfo struct {
	ID          Category `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// Doctor is static reference data. The catalog never changes while the
// process runs; all lookups return copies or read-only views.
type Doctor struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Specialization   string   `json:"specialization"`
	Category         Category `json:"category"`
	ExperienceYears  int      `json:"experience"`
	ConsultationFee  int      `json:"consultationFee"`
	AvailableTimings []string `json:"availableTimings"`
}

// OffersSlot reports whether timeSlot is one of the doctor's advertised
// timings.
func (d *Doctor) OffersSlot(timeSlot string) bool {
	for _, t := range d.AvailableTimings {
		if t == timeSlot {
			return true
		}
	}
	return false
}

var categories = []CategoryInfo{
	{ID: CategoryGeneral, Title: "General Check-up", Description: "Routine wellness examinations and non-specific symptoms."},
	{ID: CategoryCardiology, Title: "Cardiology", Description: "Specialized care for heart and cardiovascular health."},
	{ID: CategoryNeurology, Title: "Neurology (Brain)", Description: "Expert treatment for neurological disorders and brain health."},
	{ID: CategoryGynecology, Title: "Gynecology", Description: "Comprehensive care for women's reproductive health."},
	{ID: CategoryOrthopedics, Title: "Orthopedics", Description: "Bone, joint, and musculoskeletal system specializations."},
}

var doctors = []Doctor{
	{
		ID:               "dr1",
		Name:             "Dr. Sarah Johnson",
		Specialization:   "Senior General Physician",
		Category:         CategoryGeneral,
		ExperienceYears:  12,
		ConsultationFee:  500,
		AvailableTimings: []string{"09:00 AM", "10:30 AM", "02:00 PM", "04:30 PM"},
	},
	{
		ID:               "dr6",
		Name:             "Dr. David Smith",
		Specialization:   "Family Medicine",
		Category:         CategoryGeneral,
		ExperienceYears:  7,
		ConsultationFee:  400,
		AvailableTimings: []string{"11:00 AM", "01:00 PM", "03:00 PM", "05:00 PM"},
	},
	{
		ID:               "dr2",
		Name:             "Dr. Michael Chen",
		Specialization:   "Senior Cardiologist",
		Category:         CategoryCardiology,
		ExperienceYears:  15,
		ConsultationFee:  800,
		AvailableTimings: []string{"11:00 AM", "01:00 PM", "03:30 PM", "05:00 PM"},
	},
	{
		ID:               "dr7",
		Name:             "Dr. James Wilson",
		Specialization:   "Interventional Cardiologist",
		Category:         CategoryCardiology,
		ExperienceYears:  11,
		ConsultationFee:  750,
		AvailableTimings: []string{"09:00 AM", "12:00 PM", "02:00 PM", "04:00 PM"},
	},
	{
		ID:               "dr3",
		Name:             "Dr. Emily Williams",
		Specialization:   "Neurologist",
		Category:         CategoryNeurology,
		ExperienceYears:  10,
		ConsultationFee:  800,
		AvailableTimings: []string{"10:00 AM", "12:00 PM", "04:00 PM"},
	},
	{
		ID:               "dr8",
		Name:             "Dr. Robert Miller",
		Specialization:   "Neurosurgeon",
		Category:         CategoryNeurology,
		ExperienceYears:  18,
		ConsultationFee:  800,
		AvailableTimings: []string{"08:00 AM", "11:00 AM", "03:00 PM"},
	},
	{
		ID:               "dr4",
		Name:             "Dr. Anita Desai",
		Specialization:   "OB-GYN Specialist",
		Category:         CategoryGynecology,
		ExperienceYears:  8,
		ConsultationFee:  600,
		AvailableTimings: []string{"09:30 AM", "11:30 AM", "02:30 PM"},
	},
	{
		ID:               "dr9",
		Name:             "Dr. Linda Taylor",
		Specialization:   "Reproductive Specialist",
		Category:         CategoryGynecology,
		ExperienceYears:  14,
		ConsultationFee:  700,
		AvailableTimings: []string{"10:00 AM", "12:00 PM", "04:00 PM"},
	},
	{
		ID:               "dr5",
		Name:             "Dr. Robert Brown",
		Specialization:   "Orthopedic Surgeon",
		Category:         CategoryOrthopedics,
		ExperienceYears:  20,
		ConsultationFee:  800,
		AvailableTimings: []string{"08:00 AM", "10:00 AM", "03:00 PM", "06:00 PM"},
	},
	{
		ID:               "dr10",
		Name:             "Dr. Steven King",
		Specialization:   "Joint Replacement Expert",
		Category:         CategoryOrthopedics,
		ExperienceYears:  12,
		ConsultationFee:  750,
		AvailableTimings: []string{"09:00 AM", "11:00 AM", "02:00 PM", "05:00 PM"},
	},
}

var doctorsByID = func() map[string]*Doctor {
	m := make(map[string]*Doctor, len(doctors))
	for i := range doctors {
		m[doctors[i].ID] = &doctors[i]
	}
	return m
}()

// DoctorByID looks up a doctor by its catalog id.
func DoctorByID(id string) (*Doctor, bool) {
	d, ok := doctorsByID[id]
	return d, ok
}

// Doctors returns all doctors, optionally filtered by category.
func Doctors(category Category) []Doctor {
	if category == "" {
		out := make([]Doctor, len(doctors))
		copy(out, doctors)
		return out
	}
	var out []Doctor
	for _, d := range doctors {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns the full category list.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}
