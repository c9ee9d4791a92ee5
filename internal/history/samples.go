package history

import "time"

const day = 24 * time.Hour

const disclaimer = "⚠️ IMPORTANT: This is for informational purposes only. " +
	"Always consult a healthcare professional for proper diagnosis and treatment."

type sample struct {
	symptoms string
	response string
	age      time.Duration
}

// samples are listed newest first.
var samples = []sample{
	{
		symptoms: "I have a headache and fever for the past 2 days",
		response: "Based on your symptoms, here are some general possibilities:\n\n" +
			"Possible Conditions:\n• Common cold or flu\n• Migraine\n• Tension headache\n\n" +
			"General Advice:\n• Rest and stay hydrated\n• Take over-the-counter pain relievers\n• Monitor your temperature\n\n" +
			disclaimer,
		age: 1 * day,
	},
	{
		symptoms: "Cough and sore throat, feeling tired",
		response: "Based on your symptoms, here are some general possibilities:\n\n" +
			"Possible Conditions:\n• Upper respiratory infection\n• Common cold\n• Seasonal allergies\n\n" +
			"General Advice:\n• Rest and stay hydrated\n• Gargle with warm salt water\n• Use throat lozenges\n\n" +
			disclaimer,
		age: 2 * day,
	},
	{
		symptoms: "Stomach pain and nausea after eating",
		response: "Based on your symptoms, here are some general possibilities:\n\n" +
			"Possible Conditions:\n• Food poisoning\n• Gastritis\n• Indigestion\n\n" +
			"General Advice:\n• Stay hydrated with clear fluids\n• Eat bland foods (BRAT diet)\n• Avoid spicy or fatty foods\n\n" +
			disclaimer,
		age: 3 * day,
	},
}

// SampleCount is the number of entries InitializeWithSampleData inserts.
var SampleCount = len(samples)
