package dictionary

import "github.com/suyashkumar/dicom/pkg/tag"

// standardEntries lists the header attributes surfaced by the viewer.
var standardEntries = []Entry{
	// File meta information
	{Tag: tag.MediaStorageSOPClassUID, Name: "MediaStorageSOPClassUID", VR: "UI"},
	{Tag: tag.TransferSyntaxUID, Name: "TransferSyntaxUID", VR: "UI"},

	// SOP common / general study
	{Tag: tag.SpecificCharacterSet, Name: "SpecificCharacterSet", VR: "CS"},
	{Tag: tag.ImageType, Name: "ImageType", VR: "CS"},
	{Tag: tag.SOPClassUID, Name: "SOPClassUID", VR: "UI"},
	{Tag: tag.SOPInstanceUID, Name: "SOPInstanceUID", VR: "UI"},
	{Tag: tag.StudyDate, Name: "StudyDate", VR: "DA", Default: true},
	{Tag: tag.SeriesDate, Name: "SeriesDate", VR: "DA"},
	{Tag: tag.AcquisitionDate, Name: "AcquisitionDate", VR: "DA"},
	{Tag: tag.ContentDate, Name: "ContentDate", VR: "DA"},
	{Tag: tag.StudyTime, Name: "StudyTime", VR: "TM"},
	{Tag: tag.SeriesTime, Name: "SeriesTime", VR: "TM"},
	{Tag: tag.AccessionNumber, Name: "AccessionNumber", VR: "SH"},
	{Tag: tag.Modality, Name: "Modality", VR: "CS", Default: true},
	{Tag: tag.Manufacturer, Name: "Manufacturer", VR: "LO"},
	{Tag: tag.InstitutionName, Name: "InstitutionName", VR: "LO", Default: true},
	{Tag: tag.ReferringPhysicianName, Name: "ReferringPhysicianName", VR: "PN"},
	{Tag: tag.StationName, Name: "StationName", VR: "SH"},
	{Tag: tag.StudyDescription, Name: "StudyDescription", VR: "LO", Default: true},
	{Tag: tag.SeriesDescription, Name: "SeriesDescription", VR: "LO"},
	{Tag: tag.ManufacturerModelName, Name: "ManufacturerModelName", VR: "LO"},

	// Patient
	{Tag: tag.PatientName, Name: "PatientName", VR: "PN"},
	{Tag: tag.PatientID, Name: "PatientID", VR: "LO", Default: true},
	{Tag: tag.PatientBirthDate, Name: "PatientBirthDate", VR: "DA"},
	{Tag: tag.PatientSex, Name: "PatientSex", VR: "CS"},
	{Tag: tag.PatientAge, Name: "PatientAge", VR: "AS"},
	{Tag: tag.PatientWeight, Name: "PatientWeight", VR: "DS"},

	// Acquisition
	{Tag: tag.BodyPartExamined, Name: "BodyPartExamined", VR: "CS"},
	{Tag: tag.SliceThickness, Name: "SliceThickness", VR: "DS"},
	{Tag: tag.KVP, Name: "KVP", VR: "DS"},

	// Relationship
	{Tag: tag.StudyInstanceUID, Name: "StudyInstanceUID", VR: "UI"},
	{Tag: tag.SeriesInstanceUID, Name: "SeriesInstanceUID", VR: "UI"},
	{Tag: tag.StudyID, Name: "StudyID", VR: "SH"},
	{Tag: tag.SeriesNumber, Name: "SeriesNumber", VR: "IS"},
	{Tag: tag.InstanceNumber, Name: "InstanceNumber", VR: "IS"},

	// Image pixel description
	{Tag: tag.PhotometricInterpretation, Name: "PhotometricInterpretation", VR: "CS"},
	{Tag: tag.NumberOfFrames, Name: "NumberOfFrames", VR: "IS"},
	{Tag: tag.Rows, Name: "Rows", VR: "US"},
	{Tag: tag.Columns, Name: "Columns", VR: "US"},
	{Tag: tag.PixelSpacing, Name: "PixelSpacing", VR: "DS"},
	{Tag: tag.BitsAllocated, Name: "BitsAllocated", VR: "US"},
	{Tag: tag.BitsStored, Name: "BitsStored", VR: "US"},
}
